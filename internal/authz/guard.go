// Package authz holds the ownership decisions for projects and tasks. The
// functions are pure: they judge entities that were already fetched, so the
// caller decides the not-found case first and only then asks about ownership.
package authz

import "taskhub/internal/model"

// CanAccessProject reports whether user is the owner of project.
func CanAccessProject(project *model.Project, user *model.User) bool {
	if project == nil || user == nil {
		return false
	}
	return project.OwnerID == user.ID
}

// CanAccessTask reports whether user owns the project the task belongs to.
// The task's Project relation must be populated by the caller.
func CanAccessTask(task *model.Task, user *model.User) bool {
	if task == nil || user == nil {
		return false
	}
	return task.Project.OwnerID == user.ID
}
