package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"mechmarket-server/models"
	"mechmarket-server/routes"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	db := storage.InitializeDB()
	storage.InitializeRedis()
	storage.InitializeUploadDir()
	routes.Setup(db)

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	anyRole := utils.RequireRole(models.RoleOwner, models.RoleShop, models.RoleAdmin)
	ownerOnly := utils.RequireRole(models.RoleOwner)
	shopOnly := utils.RequireRole(models.RoleShop)

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/me", accessTokenVerifierMiddleware, anyRole, routes.GetCurrentUser)
		user.Patch("/pushtoken", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AlterPushToken)
		user.Patch("/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AllowsNotifications)
	}

	shops := app.Party("/api/shops")
	{
		shops.Get("/", routes.ListShops)
		shops.Get("/{id:uint}", routes.GetShop)
		shops.Get("/{id:uint}/reviews", routes.ListShopReviews)
		shops.Get("/{id:uint}/services", routes.ListShopServices)
		shops.Post("/", accessTokenVerifierMiddleware, shopOnly, routes.CreateShop)
		shops.Patch("/mine", accessTokenVerifierMiddleware, shopOnly, routes.UpdateShop)
	}

	shopServices := app.Party("/api/services", accessTokenVerifierMiddleware, shopOnly)
	{
		shopServices.Post("/", routes.CreateShopService)
		shopServices.Patch("/{id:uint}", routes.UpdateShopService)
		shopServices.Delete("/{id:uint}", routes.DeleteShopService)
	}

	vehicles := app.Party("/api/vehicles", accessTokenVerifierMiddleware, ownerOnly)
	{
		vehicles.Post("/", routes.CreateVehicle)
		vehicles.Get("/", routes.ListMyVehicles)
		vehicles.Patch("/{id:uint}", routes.UpdateVehicle)
		vehicles.Delete("/{id:uint}", routes.DeleteVehicle)
	}

	quoteRequests := app.Party("/api/quote-requests", accessTokenVerifierMiddleware)
	{
		quoteRequests.Post("/", ownerOnly, routes.CreateQuoteRequest)
		quoteRequests.Get("/mine", ownerOnly, routes.ListMyQuoteRequests)
		quoteRequests.Get("/open", shopOnly, routes.ListOpenQuoteRequests)
		quoteRequests.Get("/{id:uint}", anyRole, routes.GetQuoteRequest)
		quoteRequests.Post("/{id:uint}/close", ownerOnly, routes.CloseQuoteRequest)
		quoteRequests.Get("/{id:uint}/quotes", ownerOnly, routes.CompareQuotesForRequest)
	}

	quotes := app.Party("/api/quotes", accessTokenVerifierMiddleware)
	{
		quotes.Post("/", shopOnly, routes.SubmitQuote)
		quotes.Get("/mine", shopOnly, routes.ListMyQuotes)
		quotes.Post("/{id:uint}/accept", ownerOnly, routes.AcceptQuote)
		quotes.Post("/{id:uint}/reject", ownerOnly, routes.RejectQuote)
	}

	availability := app.Party("/api/availability")
	{
		availability.Get("/shop/{shopID:uint}", routes.GetShopAvailability)
		availability.Post("/", accessTokenVerifierMiddleware, shopOnly, routes.CreateTimeSlots)
		availability.Delete("/{id:uint}", accessTokenVerifierMiddleware, shopOnly, routes.DeleteTimeSlot)
	}

	bookings := app.Party("/api/bookings", accessTokenVerifierMiddleware)
	{
		bookings.Post("/", ownerOnly, routes.CreateBooking)
		bookings.Get("/mine", ownerOnly, routes.ListMyBookings)
		bookings.Get("/shop", shopOnly, routes.ListShopBookings)
		bookings.Get("/{id:uint}", anyRole, routes.GetBooking)
		bookings.Post("/{id:uint}/confirm", shopOnly, routes.ConfirmBooking)
		bookings.Post("/{id:uint}/start", shopOnly, routes.StartBookingWork)
		bookings.Post("/{id:uint}/cancel", anyRole, routes.CancelBooking)
	}

	invoices := app.Party("/api/invoices", accessTokenVerifierMiddleware)
	{
		invoices.Post("/", shopOnly, routes.CreateInvoice)
		invoices.Get("/", anyRole, routes.ListMyInvoices)
		invoices.Get("/{id:uint}", anyRole, routes.GetInvoice)
		invoices.Post("/{id:uint}/approve", ownerOnly, routes.ApproveInvoice)
	}

	conversations := app.Party("/api/conversations", accessTokenVerifierMiddleware, anyRole)
	{
		conversations.Post("/", routes.StartConversation)
		conversations.Get("/", routes.ListConversations)
		conversations.Get("/{id:uint}/messages", routes.ListMessages)
		conversations.Post("/{id:uint}/messages", routes.SendMessage)
		conversations.Post("/{id:uint}/seen", routes.MarkMessagesSeen)
		conversations.Post("/{id:uint}/typing", routes.Typing)
		conversations.Post("/presence", routes.Presence)
	}

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware, anyRole)
	{
		notifications.Get("/", routes.ListNotifications)
		notifications.Patch("/{id:uint}/read", routes.MarkNotificationRead)
		notifications.Patch("/read-all", routes.MarkAllNotificationsRead)
	}

	reviews := app.Party("/api/reviews", accessTokenVerifierMiddleware)
	{
		reviews.Post("/", ownerOnly, routes.CreateReview)
		reviews.Delete("/{id:uint}", ownerOnly, routes.DeleteMyReview)
	}

	forum := app.Party("/api/forum")
	{
		forum.Get("/posts", routes.ListForumPosts)
		forum.Get("/posts/{id:uint}", routes.GetForumPost)
		forum.Post("/posts", accessTokenVerifierMiddleware, anyRole, routes.CreateForumPost)
		forum.Post("/posts/{id:uint}/comments", accessTokenVerifierMiddleware, anyRole, routes.CommentOnForumPost)
		forum.Post("/posts/{id:uint}/like", accessTokenVerifierMiddleware, anyRole, routes.LikeForumPost)
		forum.Delete("/posts/{id:uint}", accessTokenVerifierMiddleware, anyRole, routes.DeleteForumPost)
	}

	upload := app.Party("/api/upload", accessTokenVerifierMiddleware, anyRole)
	{
		upload.Post("/image", routes.UploadImage)
		upload.Post("/attachment", routes.UploadAttachment)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/role", routes.AdminChangeUserRole)
		admin.Patch("/shops/{id:uint}/verify", routes.AdminVerifyShop)
		admin.Get("/bookings", routes.AdminListBookings)
		admin.Post("/bookings/{id:uint}/cancel", routes.AdminCancelBooking)
		admin.Patch("/reviews/{id:uint}/visibility", routes.AdminHideReview)
		admin.Delete("/reviews/{id:uint}", routes.AdminDeleteReview)
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)
		admin.Post("/export", routes.AdminStartExport)
		admin.Get("/export/{id:string}", routes.AdminGetExport)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	app.HandleDir("/uploads", iris.Dir(storage.UploadDir()))

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
