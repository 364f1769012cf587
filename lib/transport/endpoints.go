package transport

import (
	"github.com/classfund/classfund.go/controllers"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// RegisterEndpoints wires every controller onto the echo app. All routes
// except health require a valid token; mutating treasurer actions go
// through the strict rate limit group, user provisioning behind the
// admin token.
func RegisterEndpoints(svc *service.ClassFundService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, adminMw echo.MiddlewareFunc) {
	e.GET("/health", controllers.NewHealthController().Check)

	userCtrl := controllers.NewUserController(svc)
	e.POST("/v1/admin/users", userCtrl.CreateUser, adminMw)
	secured.GET("/v1/me", userCtrl.GetMe)

	classCtrl := controllers.NewClassController(svc)
	secured.POST("/v1/classes", classCtrl.CreateClass)
	secured.POST("/v1/classes/join", classCtrl.JoinClass)
	secured.GET("/v1/classes", classCtrl.MyClasses)
	secured.GET("/v1/classes/:class_id", classCtrl.GetClass)
	secured.PUT("/v1/classes/:class_id/members/:member_id/role", classCtrl.SetMemberRole)

	fundCtrl := controllers.NewFundAccountController(svc)
	secured.GET("/v1/classes/:class_id/fund-account", fundCtrl.GetFundAccount)
	secured.PUT("/v1/classes/:class_id/fund-account", fundCtrl.UpsertFundAccount)

	cycleCtrl := controllers.NewFeeCycleController(svc)
	secured.GET("/v1/classes/:class_id/fee-cycles", cycleCtrl.ListFeeCycles)
	secured.POST("/v1/classes/:class_id/fee-cycles", cycleCtrl.CreateFeeCycle)
	secured.PUT("/v1/fee-cycles/:cycle_id", cycleCtrl.UpdateFeeCycle)
	secured.POST("/v1/fee-cycles/:cycle_id/activate", cycleCtrl.ActivateFeeCycle)
	secured.POST("/v1/fee-cycles/:cycle_id/close", cycleCtrl.CloseFeeCycle)
	secured.GET("/v1/fee-cycles/:cycle_id/progress", cycleCtrl.FeeCycleProgress)

	invoiceCtrl := controllers.NewInvoiceController(svc)
	secured.GET("/v1/classes/:class_id/invoices", invoiceCtrl.MyInvoices)
	secured.GET("/v1/invoices/:invoice_id", invoiceCtrl.GetInvoice)
	secured.GET("/v1/fee-cycles/:cycle_id/invoices", invoiceCtrl.CycleInvoices)
	secured.GET("/v1/fee-cycles/:cycle_id/invoices/unpaid", invoiceCtrl.UnpaidInvoices)
	securedWithStrictRateLimit.POST("/v1/invoices/:invoice_id/mark-paid", invoiceCtrl.MarkInvoicePaid)

	paymentCtrl := controllers.NewPaymentController(svc)
	securedWithStrictRateLimit.POST("/v1/invoices/:invoice_id/payments", paymentCtrl.SubmitPayment)
	securedWithStrictRateLimit.POST("/v1/payments/:payment_id/proof", paymentCtrl.UploadProof)
	secured.GET("/v1/payments/:payment_id", paymentCtrl.GetPayment)
	secured.GET("/v1/classes/:class_id/payments", paymentCtrl.ListPayments)
	securedWithStrictRateLimit.POST("/v1/payments/:payment_id/verify", paymentCtrl.VerifyPayment)
	securedWithStrictRateLimit.POST("/v1/payments/:payment_id/reject", paymentCtrl.RejectPayment)
	securedWithStrictRateLimit.POST("/v1/payments/:payment_id/invalidate", paymentCtrl.InvalidatePayment)

	expenseCtrl := controllers.NewExpenseController(svc)
	secured.GET("/v1/classes/:class_id/expenses", expenseCtrl.ListExpenses)
	secured.POST("/v1/classes/:class_id/expenses", expenseCtrl.CreateExpense)
	secured.PUT("/v1/expenses/:expense_id", expenseCtrl.UpdateExpense)
	secured.DELETE("/v1/expenses/:expense_id", expenseCtrl.DeleteExpense)

	ledgerCtrl := controllers.NewLedgerController(svc)
	secured.GET("/v1/classes/:class_id/ledger", ledgerCtrl.GetLedger)

	notificationCtrl := controllers.NewNotificationController(svc)
	secured.GET("/v1/notifications", notificationCtrl.ListNotifications)
	secured.POST("/v1/notifications/:notification_id/read", notificationCtrl.MarkNotificationRead)
}
