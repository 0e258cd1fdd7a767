package handlers

import (
	"github.com/jmoiron/sqlx"

	"steeze/internal/apiclient"
	"steeze/internal/config"
	"steeze/internal/notify"
	"steeze/internal/services"
)

type Deps struct {
	Shell *services.Shell
	API   *apiclient.Client

	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	SearchHandler    *SearchHandler
	CartHandler      *CartHandler
	CheckoutHandler  *CheckoutHandler
	OrderHandler     *OrderHandler
	AuthHandler      *AuthHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, api *apiclient.Client, mail *notify.Dispatcher) *Deps {
	shell := services.NewShell(db)
	catalogSvc := services.NewCatalog(api)
	checkoutSvc := services.NewCheckout(shell, api, mail)
	accountSvc := services.NewAccount(shell, api, mail)
	adminOrders := services.NewAdminOrders(shell, api, mail)
	dashboard := services.NewDashboard(api)
	maxUpload := cfg.MaxUploadBytes()

	return &Deps{
		Shell:            shell,
		API:              api,
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		CartHandler:      &CartHandler{Shell: shell, Catalog: catalogSvc},
		CheckoutHandler:  &CheckoutHandler{Checkout: checkoutSvc, MaxUpload: maxUpload},
		OrderHandler:     &OrderHandler{Account: accountSvc, MaxUpload: maxUpload},
		AuthHandler:      &AuthHandler{Account: accountSvc, Shell: shell, API: api},
		AdminHandler: &AdminHandler{
			Dashboard: dashboard,
			Orders:    adminOrders,
			Shell:     shell,
			MaxUpload: maxUpload,
			APIBase:   cfg.APIBaseURL,
		},
	}
}
