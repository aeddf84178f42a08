package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/controllers"
	"courseplatform/middleware"
	"courseplatform/services"
)

// Deps bundles everything the controllers need so main stays a wiring list.
type Deps struct {
	DB       *gorm.DB
	Cache    *cache.Store
	Cfg      *config.Config
	Media    *services.MediaService
	Mailer   *services.Mailer
	Payments *services.PaymentService
	Logger   *log.Logger
}

func SetupRoutes(app *fiber.App, d Deps) {
	// Auth routes
	authController := controllers.NewAuthController(d.DB, d.Cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(d.Cfg)
	instructorMiddleware := middleware.InstructorMiddleware(d.DB)
	adminMiddleware := middleware.AdminMiddleware(d.DB)

	// User routes
	usersController := controllers.NewUsersController(d.DB, d.Cache, d.Cfg, d.Media, d.Logger)
	app.Get("/api/user/profile", authMiddleware, usersController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, usersController.UpdateProfile)
	app.Get("/api/user/purchased-courses", authMiddleware, usersController.GetPurchasedCourses)
	app.Get("/api/user/uploaded-courses", authMiddleware, instructorMiddleware, usersController.GetUploadedCourses)

	coursesController := controllers.NewCoursesController(d.DB, d.Cache, d.Cfg, d.Media, d.Logger)
	sectionsController := controllers.NewSectionsController(d.DB, d.Cache, d.Cfg, d.Logger)
	lessonsController := controllers.NewLessonsController(d.DB, d.Cache, d.Cfg, d.Media, d.Logger)

	// Course routes. Authoring endpoints address the course being edited by
	// :id; the catch-all GET /:id is registered last so the fixed paths win.
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/sorted", coursesController.GetCoursesWithSort)
	courses.Get("/top-rated/:id", coursesController.GetTopRatedByInstructor)

	courses.Post("/create", authMiddleware, instructorMiddleware, coursesController.CreateCourse)
	courses.Put("/update/:id", authMiddleware, instructorMiddleware, coursesController.UpdateCourse)
	courses.Put("/publish/:id", authMiddleware, instructorMiddleware, coursesController.PublishCourse)
	courses.Put("/unpublish/:id", authMiddleware, instructorMiddleware, coursesController.UnpublishCourse)

	courses.Put("/create-section/:id", authMiddleware, instructorMiddleware, sectionsController.CreateSection)
	courses.Put("/update-section/:id", authMiddleware, instructorMiddleware, sectionsController.UpdateSection)
	courses.Put("/reorder-section/:id", authMiddleware, instructorMiddleware, sectionsController.ReorderSections)
	courses.Put("/publish-section/:id", authMiddleware, instructorMiddleware, sectionsController.PublishSection)
	courses.Put("/unpublish-section/:id", authMiddleware, instructorMiddleware, sectionsController.UnpublishSection)
	courses.Put("/delete-section/:id", authMiddleware, instructorMiddleware, sectionsController.DeleteSection)

	courses.Put("/create-lesson/:id", authMiddleware, instructorMiddleware, lessonsController.CreateLesson)
	courses.Put("/update-lesson/:id", authMiddleware, instructorMiddleware, lessonsController.UpdateLesson)
	courses.Put("/reorder-lesson/:id", authMiddleware, instructorMiddleware, lessonsController.ReorderLessons)
	courses.Put("/publish-lesson/:id", authMiddleware, instructorMiddleware, lessonsController.PublishLesson)
	courses.Put("/unpublish-lesson/:id", authMiddleware, instructorMiddleware, lessonsController.UnpublishLesson)
	courses.Put("/delete-lesson/:id", authMiddleware, instructorMiddleware, lessonsController.DeleteLesson)
	courses.Put("/upload-lesson-video/:id", authMiddleware, instructorMiddleware, lessonsController.UploadLessonVideo)

	courses.Get("/purchased/:id", authMiddleware, coursesController.GetPurchasedCourse)
	courses.Get("/uploaded/:id", authMiddleware, instructorMiddleware, coursesController.GetUploadedCourse)
	courses.Get("/:id", coursesController.GetSingleCourse)

	// Catalog lookup routes. Reads are public, writes are admin-only below.
	catalogController := controllers.NewCatalogController(d.DB, d.Logger)
	app.Get("/api/levels", catalogController.GetLevels)
	app.Get("/api/categories", catalogController.GetCategories)

	// Review and question routes
	reviewsController := controllers.NewReviewsController(d.DB, d.Cache, d.Cfg, d.Logger)
	app.Put("/api/courses/add-review/:id", authMiddleware, reviewsController.AddReview)
	app.Put("/api/courses/add-review-reply/:id", authMiddleware, instructorMiddleware, reviewsController.AddReviewReply)

	questionsController := controllers.NewQuestionsController(d.DB, d.Cache, d.Cfg, d.Mailer, d.Logger)
	app.Put("/api/courses/add-question/:id", authMiddleware, questionsController.AddQuestion)
	app.Put("/api/courses/add-answer/:id", authMiddleware, questionsController.AddAnswer)

	// Quiz routes
	quizzesController := controllers.NewQuizzesController(d.DB, d.Cache, d.Cfg, d.Logger)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Post("/", instructorMiddleware, quizzesController.CreateQuiz)
	quizzes.Get("/section/:id", quizzesController.GetQuizzesBySection)
	quizzes.Get("/:id", quizzesController.GetQuiz)
	quizzes.Post("/:id/submit", quizzesController.SubmitAttempt)

	// Progress routes
	progressController := controllers.NewProgressController(d.DB, d.Cache, d.Cfg, d.Logger)
	app.Get("/api/progress", authMiddleware, progressController.GetAllProgress)
	app.Get("/api/progress/:id", authMiddleware, progressController.GetProgress)
	app.Post("/api/progress/:id", authMiddleware, progressController.UpdateLessonCompletion)

	// Order routes. The webhook is unauthenticated, the gateway signs it.
	ordersController := controllers.NewOrdersController(d.DB, d.Cache, d.Cfg, d.Payments, d.Mailer, d.Logger)
	app.Post("/api/orders/payment-intent", authMiddleware, ordersController.CreatePaymentIntent)
	app.Post("/api/orders/create", authMiddleware, ordersController.CreateOrder)
	app.Post("/api/orders/webhook", ordersController.PaymentWebhook)

	// Notification routes
	notificationsController := controllers.NewNotificationsController(d.DB, d.Logger)
	app.Get("/api/notifications", authMiddleware, instructorMiddleware, notificationsController.GetNotifications)
	app.Put("/api/notifications/:id", authMiddleware, instructorMiddleware, notificationsController.MarkRead)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/courses", coursesController.GetAllCourses)
	admin.Delete("/courses/:id", coursesController.DeleteCourse)
	admin.Get("/orders", ordersController.GetOrders)
	admin.Get("/users", usersController.GetAllUsers)
	admin.Put("/users/:id/role", usersController.UpdateUserRole)
	admin.Post("/levels", catalogController.CreateLevel)
	admin.Delete("/levels/:id", catalogController.DeleteLevel)
	admin.Post("/categories", catalogController.CreateCategory)
	admin.Delete("/categories/:id", catalogController.DeleteCategory)
}
