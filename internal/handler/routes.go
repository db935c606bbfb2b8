package handler

import (
	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, userHandler *UserHandler, sectionHandler *SectionHandler, expenseHandler *ExpenseHandler, incomeHandler *IncomeHandler, monthHandler *MonthHandler, debtHandler *DebtHandler, savingsHandler *SavingsHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Profile routes
	api.GET("/me", userHandler.GetProfile)

	// Section and card routes
	api.POST("/sections", sectionHandler.CreateSection)
	api.GET("/sections", sectionHandler.GetSections)
	api.POST("/cards", sectionHandler.CreateCard)
	api.GET("/cards", sectionHandler.GetCards)

	// Expense template routes
	expenses := api.Group("/expenses")
	expenses.POST("", expenseHandler.CreateTemplate)
	expenses.GET("", expenseHandler.GetTemplates)
	expenses.GET("/:id", expenseHandler.GetTemplate)
	expenses.PUT("/:id", expenseHandler.UpdateTemplate)
	expenses.DELETE("/:id", expenseHandler.DeleteTemplate)

	// Expense instance routes
	instances := api.Group("/instances")
	instances.POST("/:id/pay", expenseHandler.PayInstance)
	instances.POST("/:id/defer", expenseHandler.DeferInstance)
	instances.POST("/:id/revert", expenseHandler.RevertInstance)

	// Month page routes
	months := api.Group("/months")
	months.GET("/:month", monthHandler.GetMonth)
	months.POST("/:month/expenses", expenseHandler.CreateAdhocExpense)

	// Income routes
	incomes := api.Group("/incomes")
	incomes.POST("", incomeHandler.CreateTemplate)
	incomes.GET("", incomeHandler.GetTemplates)
	incomes.PUT("/:id", incomeHandler.UpdateTemplate)
	incomes.DELETE("/:id", incomeHandler.DeleteTemplate)
	incomes.POST("/:id/months/:month/receive", incomeHandler.ReceiveVariable)
	api.POST("/income-instances/:id/receive", incomeHandler.ReceiveInstance)

	// Debt routes
	debts := api.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.GetDebts)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PUT("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.GET("/:id/transactions", debtHandler.GetTransactions)
	debts.POST("/:id/transactions", debtHandler.PostTransaction)
	debts.POST("/:id/payments", debtHandler.MakeExtraPayment)
	debts.POST("/:id/reconcile", debtHandler.ReconcileDebt)

	// Savings routes
	savings := api.Group("/savings")
	savings.GET("/pots", savingsHandler.GetPots)
	savings.GET("/free-pot", savingsHandler.GetFreePot)
	savings.POST("/pots/:id/contributions", savingsHandler.Contribute)
	savings.GET("/pots/:id/contributions", savingsHandler.GetHistory)
	savings.POST("/pots/:id/reconcile", savingsHandler.ReconcilePot)
	savings.POST("/transfers", savingsHandler.Transfer)
}
