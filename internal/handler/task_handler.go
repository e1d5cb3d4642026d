package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"taskhub/internal/errors"
	"taskhub/internal/identity"
	"taskhub/internal/model"
	"taskhub/internal/service"
)

const dueDateLayout = "2006-01-02"

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// TaskRequest represents the caller-editable task fields. Completed is a
// pointer so a missing flag fails validation instead of defaulting to false.
type TaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Completed   *bool  `json:"completed" validate:"required"`
	ProjectID   uint   `json:"projectId" validate:"required"`
}

// TaskFilterRequest represents the filter query for the paginated listing.
type TaskFilterRequest struct {
	ProjectID     uint   `query:"projectId" validate:"required"`
	Search        string `query:"search"`
	Completed     *bool  `query:"completed"`
	SortBy        string `query:"sortBy"`
	SortDirection string `query:"sortDirection"`
	Page          int    `query:"page"`
	Size          int    `query:"size"`
}

// TaskResponse represents a task.
type TaskResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate,omitempty"`
	Completed   bool   `json:"completed"`
	ProjectID   uint   `json:"projectId"`
}

// PageResponse represents one page of a filtered task listing.
type PageResponse struct {
	Content       []TaskResponse `json:"content"`
	PageNumber    int            `json:"pageNumber"`
	PageSize      int            `json:"pageSize"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
}

func toTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		ProjectID:   task.ProjectID,
	}
	if task.DueDate != nil {
		resp.DueDate = task.DueDate.Format(dueDateLayout)
	}
	return resp
}

func toTaskResponses(tasks []model.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, toTaskResponse(&tasks[i]))
	}
	return responses
}

func (r *TaskRequest) toInput() (service.TaskInput, error) {
	input := service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed != nil && *r.Completed,
		ProjectID:   r.ProjectID,
	}
	if r.DueDate != "" {
		due, err := time.Parse(dueDateLayout, r.DueDate)
		if err != nil {
			return service.TaskInput{}, err
		}
		input.DueDate = &due
	}
	return input, nil
}

// ListByProject godoc
// @Summary List all tasks of a project
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param projectId query int true "Project ID"
// @Success 200 {array} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListByProject(c echo.Context) error {
	user, err := identity.CurrentUser(c)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	projectID, err := strconv.Atoi(c.QueryParam("projectId"))
	if err != nil || projectID < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid projectId")
	}

	tasks, err := h.taskService.ListByProject(c.Request().Context(), user, uint(projectID))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// ListFiltered godoc
// @Summary List tasks with filtering, sorting and pagination
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param projectId query int true "Project ID"
// @Param search query string false "Substring match against title or description"
// @Param completed query bool false "Completion filter"
// @Param sortBy query string false "Sort field" default(id)
// @Param sortDirection query string false "asc or desc" default(asc)
// @Param page query int false "Zero-based page index" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} PageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/filter [get]
func (h *TaskHandler) ListFiltered(c echo.Context) error {
	user, err := identity.CurrentUser(c)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	var req TaskFilterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := h.taskService.ListFiltered(c.Request().Context(), user, service.TaskFilter{
		ProjectID:     req.ProjectID,
		Search:        req.Search,
		Completed:     req.Completed,
		SortBy:        req.SortBy,
		SortDirection: req.SortDirection,
		Page:          req.Page,
		Size:          req.Size,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, PageResponse{
		Content:       toTaskResponses(page.Tasks),
		PageNumber:    page.Page,
		PageSize:      page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		First:         page.First,
		Last:          page.Last,
	})
}

// Get godoc
// @Summary Get a task by id
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, err := identity.CurrentUser(c)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), user, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create godoc
// @Summary Create a task in a project
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TaskRequest true "Task data"
// @Success 201 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := identity.CurrentUser(c)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dueDate")
	}

	task, err := h.taskService.Create(c.Request().Context(), user, input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Update godoc
// @Summary Update a task, optionally moving it to another owned project
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body TaskRequest true "Task data"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := identity.CurrentUser(c)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dueDate")
	}

	task, err := h.taskService.Update(c.Request().Context(), user, id, input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := identity.CurrentUser(c)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), user, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
