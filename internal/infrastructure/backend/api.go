package backend

import "github.com/retail/storefront/internal/infrastructure/config"

// API groups the resource clients over one shared Client
type API struct {
	Auth          *AuthClient
	Products      *ProductClient
	Categories    *CategoryClient
	Inventory     *InventoryClient
	Cart          *CartClient
	Orders        *OrderClient
	Payments      *PaymentClient
	Notifications *NotificationClient
}

// New builds every resource client for the configured backend
func New(cfg config.BackendConfig, opts ...Option) (*API, error) {
	c, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &API{
		Auth:          NewAuthClient(c),
		Products:      NewProductClient(c),
		Categories:    NewCategoryClient(c),
		Inventory:     NewInventoryClient(c),
		Cart:          NewCartClient(c),
		Orders:        NewOrderClient(c),
		Payments:      NewPaymentClient(c),
		Notifications: NewNotificationClient(c),
	}, nil
}
