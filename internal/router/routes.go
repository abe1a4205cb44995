package router

import (
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/controllers"
	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/middleware"
	"github.com/doujindesk/doujindesk-api/internal/models"
)

// Controllers bundles the handlers served by the API.
type Controllers struct {
	Tickets *controllers.TicketController
	Catalog *controllers.CatalogController
	Gate    *controllers.GateController
	Finance *controllers.FinanceController
	Staff   *controllers.StaffController
	Circles *controllers.CircleController
}

// RegisterRoutes wires the API. Anything below /api/admin, /api/finance and
// /api/gate needs a staff token.
//
//	public        catalog, quotes, checkout, purchase lookup, circle applications
//	gate          scans (gate crew, coordinators, admins)
//	coordinator   purchase back office, circle review
//	admin         catalog edits, refunds, ledger, roster
func RegisterRoutes(r *Router, c *Controllers, authenticator middleware.Authenticator) {
	staffAuth := middleware.StaffAuth(authenticator)
	backOffice := middleware.Role(models.StaffRoleAdmin, models.StaffRoleCoordinator)
	admin := middleware.Admin()

	r.GET("/health", func(w http.ResponseWriter, req *request.Request) {
		response.Success(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
	})

	// ----- Public -----
	r.GET("/api/ticket-types", c.Catalog.Index)
	r.GET("/api/ticket-types/{id}", c.Catalog.Show)
	r.GET("/api/exchange-rate", c.Finance.ExchangeRate)

	r.POST("/api/tickets/quote", c.Tickets.Quote)
	r.POST("/api/purchases", c.Tickets.Purchase)
	r.GET("/api/purchases", c.Tickets.ByEmail)
	r.GET("/api/purchases/{id}", c.Tickets.Show)
	r.GET("/api/purchases/{id}/ticket", c.Tickets.Printable)
	r.GET("/api/purchases/{id}/qr.png", c.Tickets.QRImage)

	r.POST("/api/circles", c.Circles.Submit)
	r.POST("/api/circles/{id}/sample", c.Circles.UploadSample)

	r.POST("/api/staff/login", c.Staff.Login)
	r.GET("/api/staff/me", c.Staff.Me).Middleware(staffAuth)

	// ----- Gate -----
	gate := r.Group("/api/gate")
	gate.Use(staffAuth)
	gate.POST("/validate", c.Gate.Validate)
	gate.GET("/validations", c.Gate.Validations).Middleware(backOffice)

	// ----- Back office -----
	office := r.Group("/api/admin")
	office.Use(staffAuth)
	office.Use(backOffice)
	office.GET("/purchases", c.Tickets.List)
	office.POST("/purchases/{id}/confirm", c.Tickets.Confirm)
	office.POST("/purchases/{id}/fail", c.Tickets.Fail)
	office.POST("/purchases/{id}/refund", c.Tickets.Refund).Middleware(admin)
	office.GET("/ticket-types", c.Catalog.All)
	office.POST("/ticket-types", c.Catalog.Create).Middleware(admin)
	office.PATCH("/ticket-types/{id}", c.Catalog.Update).Middleware(admin)
	office.DELETE("/ticket-types/{id}", c.Catalog.Delete).Middleware(admin)
	office.GET("/circles", c.Circles.Index)
	office.GET("/circles/{id}", c.Circles.Show)
	office.POST("/circles/{id}/review", c.Circles.Review)
	office.GET("/staff", c.Staff.Index).Middleware(admin)
	office.POST("/staff", c.Staff.Register).Middleware(admin)
	office.PATCH("/staff/{id}/active", c.Staff.SetActive).Middleware(admin)

	// ----- Finance -----
	finance := r.Group("/api/finance")
	finance.Use(staffAuth)
	finance.Use(backOffice)
	finance.GET("/sales", c.Finance.Sales)
	finance.GET("/summary", c.Finance.Summary).Middleware(admin)
	finance.GET("/transactions", c.Finance.Index).Middleware(admin)
	finance.GET("/transactions/{id}", c.Finance.Show).Middleware(admin)
	finance.POST("/transactions", c.Finance.Record).Middleware(admin)
}
