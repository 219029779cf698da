package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string   // 주문 상태 코드
type PaymentMethod string // 결제 수단
type PaymentStatus string // 결제 상태 코드

const (
	OrderStatusPending   OrderStatus = "PENDING"   // 주문 접수
	OrderStatusConfirmed OrderStatus = "CONFIRMED" // 주문 확정
	OrderStatusDelivered OrderStatus = "DELIVERED" // 배달 완료
	OrderStatusCancelled OrderStatus = "CANCELLED" // 주문 취소

	PaymentMethodCash PaymentMethod = "CASH" // 현장 결제
	PaymentMethodCard PaymentMethod = "CARD" // 카드 결제

	PaymentStatusUnpaid PaymentStatus = "UNPAID" // 결제 대기
	PaymentStatusPaid   PaymentStatus = "PAID"   // 결제 완료
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

type Order struct {
	ID                uint            `gorm:"primarykey" json:"id"`                                      // 주문 ID
	UserID            uint            `gorm:"not null;index" json:"user_id"`                             // 주문자 ID
	Status            OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"` // 주문 상태
	Subtotal          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`               // 상품 합계
	Discounts         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discounts"`              // 할인 금액
	Total             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`                  // 결제 금액
	CustomerName      string          `gorm:"type:varchar(200);not null" json:"customer_name"`           // 주문자 이름
	CustomerPhone     string          `gorm:"type:varchar(50);not null" json:"customer_phone"`           // 연락처
	CustomerEmail     string          `gorm:"type:varchar(200)" json:"customer_email"`                   // 이메일
	AddressStreet     string          `gorm:"type:varchar(300);not null" json:"address_street"`          // 배송지 주소
	AddressCity       string          `gorm:"type:varchar(100);not null" json:"address_city"`            // 도시
	AddressPostalCode string          `gorm:"type:varchar(20)" json:"address_postal_code"`               // 우편번호
	AddressDetails    string          `gorm:"type:text" json:"address_details"`                          // 상세 주소/요청사항
	PaymentMethod     PaymentMethod   `gorm:"type:varchar(20);not null;default:'CASH'" json:"payment_method"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null;default:'UNPAID'" json:"payment_status"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"` // 생성 시각
	UpdatedAt         time.Time       `json:"updated_at"`              // 수정 시각
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`          // 삭제 시각(소프트 삭제)

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"` // 주문 항목 목록
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a checkout-time copy. It keeps no reference to the catalog.
type OrderItem struct {
	ID           uint            `gorm:"primarykey" json:"id"`                          // 주문 항목 ID
	OrderID      uint            `gorm:"not null;index" json:"order_id"`                // 주문 ID
	ProductName  string          `gorm:"type:varchar(200);not null" json:"product_name"` // 상품명 스냅샷
	VariantLabel string          `gorm:"type:varchar(200)" json:"variant_label"`        // 옵션 라벨 스냅샷
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"` // 단가 스냅샷
	Quantity     int             `gorm:"not null" json:"quantity"`                      // 수량
	ImageURL     string          `gorm:"type:varchar(500)" json:"image_url"`            // 이미지 스냅샷
	CreatedAt    time.Time       `json:"created_at"`                                    // 생성 시각
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
