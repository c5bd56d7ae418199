package routes

import (
	"campus/backend/config"
	"campus/backend/controllers"
	"campus/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	coursesController := controllers.NewCoursesController(db, cfg)
	enrollmentController := controllers.NewEnrollmentController(db, cfg)
	materialsController := controllers.NewMaterialsController(db, cfg)
	assignmentsController := controllers.NewAssignmentsController(db, cfg)
	sessionsController := controllers.NewSessionsController(db, cfg)
	messagesController := controllers.NewMessagesController(db, cfg)

	// Join-code enroll discovers the course by code alone, so it sits
	// outside the :id group.
	app.Post("/api/courses/join-code", authMiddleware, enrollmentController.SubmitByJoinCode)

	courses := app.Group("/api/courses")
	courses.Post("/", authMiddleware, coursesController.CreateCourse)
	// Anonymous viewers get the public-tier workspace.
	courses.Get("/:id", coursesController.GetCourse)
	courses.Patch("/:id", authMiddleware, coursesController.UpdateCourse)
	courses.Delete("/:id", authMiddleware, coursesController.DeleteCourse)

	courses.Post("/:id/enroll", authMiddleware, enrollmentController.SubmitEnrollment)
	courses.Get("/:id/enrollments", authMiddleware, enrollmentController.ListEnrollments)
	courses.Patch("/:id/enrollments/:enrollmentId", authMiddleware, enrollmentController.Decide)
	courses.Post("/:id/join-code/regenerate", authMiddleware, enrollmentController.RegenerateJoinCode)

	courses.Post("/:id/lessons", authMiddleware, coursesController.AddLesson)
	courses.Delete("/:id/lessons/:lessonId", authMiddleware, coursesController.DeleteLesson)
	courses.Post("/:id/questions", authMiddleware, coursesController.AddQuestion)
	courses.Delete("/:id/questions/:questionId", authMiddleware, coursesController.DeleteQuestion)

	courses.Post("/:id/materials", authMiddleware, materialsController.CreateMaterial)
	courses.Delete("/:id/materials/:materialId", authMiddleware, materialsController.DeleteMaterial)

	courses.Post("/:id/assignments", authMiddleware, assignmentsController.CreateAssignment)
	courses.Patch("/:id/assignments/:assignmentId", authMiddleware, assignmentsController.UpdateAssignment)
	courses.Delete("/:id/assignments/:assignmentId", authMiddleware, assignmentsController.DeleteAssignment)
	courses.Post("/:id/assignments/:assignmentId/submissions", authMiddleware, assignmentsController.SubmitWork)
	courses.Patch("/:id/submissions/:submissionId", authMiddleware, assignmentsController.GradeSubmission)

	courses.Post("/:id/sessions", authMiddleware, sessionsController.CreateSession)
	courses.Delete("/:id/sessions/:sessionId", authMiddleware, sessionsController.DeleteSession)
	courses.Post("/:id/meeting-links", authMiddleware, sessionsController.CreateMeetingLink)
	courses.Delete("/:id/meeting-links/:linkId", authMiddleware, sessionsController.DeleteMeetingLink)
	courses.Get("/:id/calendar.ics", authMiddleware, sessionsController.ExportCalendar)

	courses.Get("/:id/messages", authMiddleware, messagesController.ListChannel)
	courses.Post("/:id/messages", authMiddleware, messagesController.PostChannel)
	courses.Get("/:id/chat", authMiddleware, messagesController.ListChat)
	courses.Post("/:id/chat", authMiddleware, messagesController.PostChat)
}
