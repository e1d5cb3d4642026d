package main

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskhub/internal/config"
	"taskhub/internal/db"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

const seedPassword = "password123"

type seedProject struct {
	Title       string
	Description string
	Tasks       []seedTask
}

type seedTask struct {
	Title       string
	Description string
	DueInDays   int
	Completed   bool
}

type seedUser struct {
	Email    string
	Projects []seedProject
}

var fixtures = []seedUser{
	{
		Email: "alice@example.com",
		Projects: []seedProject{
			{
				Title:       "Home",
				Description: "Household chores",
				Tasks: []seedTask{
					{Title: "Fix sink", Description: "Kitchen sink is leaking", DueInDays: 3},
					{Title: "Buy milk", DueInDays: 1},
					{Title: "Clean house", Completed: true},
				},
			},
			{
				Title:       "Side project",
				Description: "Weekend experiments",
				Tasks: []seedTask{
					{Title: "Sketch architecture", Completed: true},
					{Title: "Write prototype", DueInDays: 14},
				},
			},
		},
	},
	{
		Email: "bob@example.com",
		Projects: []seedProject{
			{
				Title: "Reading list",
				Tasks: []seedTask{
					{Title: "Finish chapter 4", DueInDays: 7},
				},
			},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Project{}, &model.Task{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	users := repository.NewUserRepository(gormDB)
	projects := repository.NewProjectRepository(gormDB)
	tasks := repository.NewTaskRepository(gormDB)

	ctx := context.Background()
	created, skipped := 0, 0
	for _, fixture := range fixtures {
		user, err := seedOneUser(ctx, users, projects, tasks, fixture)
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", fixture.Email, err)
		}
		if user == nil {
			skipped++
			continue
		}
		created++
	}

	log.Printf("Seed completed: %d users created, %d already present", created, skipped)
	if created > 0 {
		log.Printf("Demo password for seeded users: %s", seedPassword)
	}
}

// seedOneUser creates the user with their projects and tasks. Users that
// already exist are left untouched to keep the script idempotent.
func seedOneUser(
	ctx context.Context,
	users repository.UserRepository,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	fixture seedUser,
) (*model.User, error) {
	if existing, err := users.FindByEmail(ctx, fixture.Email); err == nil && existing != nil {
		log.Printf("User %s already exists, skipping", fixture.Email)
		return nil, nil
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: fixture.Email, PasswordHash: string(hashed)}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}

	for _, projectFixture := range fixture.Projects {
		project := &model.Project{
			Title:       projectFixture.Title,
			Description: projectFixture.Description,
			OwnerID:     user.ID,
		}
		if err := projects.Create(ctx, project); err != nil {
			return nil, err
		}

		for _, taskFixture := range projectFixture.Tasks {
			task := &model.Task{
				Title:       taskFixture.Title,
				Description: taskFixture.Description,
				Completed:   taskFixture.Completed,
				ProjectID:   project.ID,
			}
			if taskFixture.DueInDays > 0 {
				due := time.Now().AddDate(0, 0, taskFixture.DueInDays)
				task.DueDate = &due
			}
			if err := tasks.Create(ctx, task); err != nil {
				return nil, err
			}
		}
	}

	log.Printf("Seeded %s with %d projects", fixture.Email, len(fixture.Projects))
	return user, nil
}
