package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Order struct {
	gorm.Model
	OrderNumber     string         `json:"orderNumber" gorm:"uniqueIndex;size:32"`
	UserID          int            `json:"userId" gorm:"index"`
	Status          string         `json:"status"`
	Total           float64        `json:"total"`
	ShippingAddress datatypes.JSON `json:"shippingAddress"`
	Items           []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	gorm.Model
	OrderID     int     `json:"orderId"`
	ProductId   int     `json:"productId"`
	Name        string  `json:"name"`
	VariantName string  `json:"variantName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
