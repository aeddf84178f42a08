package controllers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/middleware"
	"courseplatform/models"
	"courseplatform/services"
	"courseplatform/utils"
)

type OrdersController struct {
	DB       *gorm.DB
	Cache    *cache.Store
	Cfg      *config.Config
	Payments *services.PaymentService
	Mailer   *services.Mailer
	Logger   *log.Logger
}

func NewOrdersController(db *gorm.DB, store *cache.Store, cfg *config.Config, payments *services.PaymentService, mailer *services.Mailer, logger *log.Logger) *OrdersController {
	return &OrdersController{DB: db, Cache: store, Cfg: cfg, Payments: payments, Mailer: mailer, Logger: logger}
}

func joinCourseIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

func splitCourseIDs(s string) []uint {
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// CreatePaymentIntent opens an intent at the gateway for the given courses.
// The amount is always computed from the stored prices, never taken from the
// client.
func (oc *OrdersController) CreatePaymentIntent(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseIDs []uint `json:"courseIds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if len(input.CourseIDs) == 0 {
		return utils.BadRequest(c, "At least one course is required")
	}

	var courses []models.Course
	if err := oc.DB.Find(&courses, input.CourseIDs).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if len(courses) != len(input.CourseIDs) {
		return utils.NotFound(c, "Course not found")
	}

	var user models.User
	if err := oc.DB.Preload("PurchasedCourses").First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	for _, course := range courses {
		if user.HasPurchased(course.ID) {
			return utils.BadRequest(c, "You have already purchased this course")
		}
	}

	var amount int64
	names := make([]string, 0, len(courses))
	for _, course := range courses {
		amount += int64(course.Price * 100)
		names = append(names, course.Name)
	}

	intent, err := oc.Payments.CreateIntent(c.Context(), amount, "usd", strings.Join(names, ", "), map[string]string{
		"userId":    strconv.FormatUint(uint64(userID), 10),
		"courseIds": joinCourseIDs(input.CourseIDs),
	})
	if err != nil {
		oc.Logger.Printf("could not create payment intent: %v", err)
		return utils.UpstreamError(c, "Payment provider is unavailable")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"paymentIntentId": intent.ID,
			"amount":          intent.Amount,
			"currency":        intent.Currency,
			"checkoutUrl":     intent.CheckoutURL,
		},
	})
}

// CreateOrder finalizes a purchase after the client reports payment. The
// intent is re-fetched from the gateway and must have succeeded; client-side
// state is never trusted.
func (oc *OrdersController) CreateOrder(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		PaymentIntentID string `json:"paymentIntentId"`
		CourseIDs       []uint `json:"courseIds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.PaymentIntentID == "" || len(input.CourseIDs) == 0 {
		return utils.BadRequest(c, "Payment intent and courses are required")
	}

	intent, err := oc.Payments.RetrieveIntent(c.Context(), input.PaymentIntentID)
	if err != nil {
		oc.Logger.Printf("could not retrieve payment intent: %v", err)
		return utils.UpstreamError(c, "Payment provider is unavailable")
	}
	if intent.Status != "succeeded" {
		return utils.BadRequest(c, "Payment has not been completed")
	}

	order, err := oc.fulfillPurchase(c, userID, input.CourseIDs, input.PaymentIntentID)
	if err != nil {
		return oc.purchaseError(c, err)
	}

	return utils.Created(c, fiber.Map{"order": order})
}

var (
	errUserNotFound     = errors.New("user not found")
	errCourseNotFound   = errors.New("course not found")
	errAlreadyPurchased = errors.New("course already purchased")
)

func (oc *OrdersController) purchaseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errUserNotFound):
		return utils.NotFound(c, "User not found")
	case errors.Is(err, errCourseNotFound):
		return utils.NotFound(c, "Course not found")
	case errors.Is(err, errAlreadyPurchased):
		return utils.BadRequest(c, "You have already purchased this course")
	default:
		oc.Logger.Printf("could not record order: %v", err)
		return utils.InternalServerError(c, "Could not create order")
	}
}

// fulfillPurchase records the order, grants course access and fires the
// side effects shared by the client confirmation path and the webhook path.
func (oc *OrdersController) fulfillPurchase(c *fiber.Ctx, userID uint, courseIDs []uint, paymentInfo string) (*models.Order, error) {
	var user models.User
	if err := oc.DB.Preload("PurchasedCourses").First(&user, userID).Error; err != nil {
		return nil, errUserNotFound
	}

	var courses []*models.Course
	if err := oc.DB.Find(&courses, courseIDs).Error; err != nil {
		return nil, err
	}
	if len(courses) != len(courseIDs) {
		return nil, errCourseNotFound
	}
	for _, course := range courses {
		if user.HasPurchased(course.ID) {
			return nil, errAlreadyPurchased
		}
	}

	order := models.Order{
		OrderCode:   uuid.NewString(),
		UserID:      userID,
		PaymentInfo: paymentInfo,
		Courses:     courses,
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("PurchasedCourses").Append(courses); err != nil {
			return err
		}
		for _, course := range courses {
			if err := tx.Model(&models.Course{}).Where("id = ?", course.ID).
				Update("purchased", gorm.Expr("purchased + 1")).Error; err != nil {
				return err
			}
			notification := models.Notification{
				UserID:   userID,
				AuthorID: course.AuthorID,
				CourseID: course.ID,
				Title:    "New Order",
				Message:  fmt.Sprintf("You have a new order for %s", course.Name),
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = oc.Cache.Delete(c.Context(), cache.UserKey(userID))
	for _, course := range courses {
		_ = oc.Cache.InvalidateCourse(c.Context(), course.ID)
	}

	// Confirmation mail is best effort: the purchase already happened.
	lines := make([]services.OrderLine, 0, len(courses))
	for _, course := range courses {
		lines = append(lines, services.OrderLine{Name: course.Name, Price: course.Price})
	}
	html := services.OrderConfirmationHTML(order.OrderCode, lines, time.Now())
	if err := oc.Mailer.Send(user.Email, "Order Confirmation", html); err != nil {
		oc.Logger.Printf("could not send order confirmation: %v", err)
	}

	return &order, nil
}

type webhookEvent struct {
	Code string `json:"code"`
	Data struct {
		PaymentIntentID string            `json:"payment_intent_id"`
		Metadata        map[string]string `json:"metadata"`
	} `json:"data"`
}

// PaymentWebhook handles asynchronous payment notifications from the gateway.
// The HMAC signature is verified over the raw body before anything is parsed.
func (oc *OrdersController) PaymentWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("X-Webhook-Signature")
	if signature == "" || !oc.Payments.VerifyWebhookSignature(payload, signature) {
		return utils.BadRequest(c, "Invalid webhook signature")
	}

	var event webhookEvent
	if err := c.BodyParser(&event); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if event.Code != "PAID" {
		// Acknowledge other events so the gateway stops retrying.
		return c.JSON(fiber.Map{"success": true})
	}

	userID, err := strconv.ParseUint(event.Data.Metadata["userId"], 10, 64)
	if err != nil {
		return utils.BadRequest(c, "Missing user metadata")
	}
	courseIDs := splitCourseIDs(event.Data.Metadata["courseIds"])
	if len(courseIDs) == 0 {
		return utils.BadRequest(c, "Missing course metadata")
	}

	// An order for this intent may already exist from the client confirmation
	// path; the webhook must stay idempotent.
	var existing models.Order
	if err := oc.DB.Where("payment_info = ?", event.Data.PaymentIntentID).First(&existing).Error; err == nil {
		return c.JSON(fiber.Map{"success": true})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	if _, err := oc.fulfillPurchase(c, uint(userID), courseIDs, event.Data.PaymentIntentID); err != nil {
		return oc.purchaseError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetOrders lists all orders for the admin dashboard.
func (oc *OrdersController) GetOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := oc.DB.Preload("Courses").Order("created_at DESC").Find(&orders).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"success": true, "data": orders})
}
