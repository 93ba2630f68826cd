package handlers

import (
	"storefront/internal/config"
	"storefront/internal/media"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Accounts *services.AuthService

	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	SearchHandler   *SearchHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, mailer services.ActivationMailer) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	tokens := services.NewActivationTokens(cfg.ActivationSecret, cfg.ActivationTTL)
	authSvc := services.NewAuthService(userRepo, tokens, mailer, cfg.BaseURL)
	catalogSvc := services.NewCatalogService(prodRepo, media.NewImageStore(cfg.MediaDir))
	cartSvc := services.NewCartService(prodRepo)
	orderSvc := services.NewOrderService(db, cartSvc, orderRepo)
	invoiceSvc := services.NewInvoiceService(orderSvc, cfg.BaseURL)

	return &Deps{
		Accounts:        authSvc,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Order: orderSvc, Invoices: invoiceSvc},
		AdminHandler:    &AdminHandler{Orders: orderSvc},
	}
}
