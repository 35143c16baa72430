package settings

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ValueType describes how a setting's string value is interpreted
type ValueType string

const (
	TypeString  ValueType = "STRING"
	TypeInt     ValueType = "INT"
	TypeDecimal ValueType = "DECIMAL"
	TypeBool    ValueType = "BOOL"
	TypeJSON    ValueType = "JSON"
)

// Well-known keys
const (
	KeyStoreName             = "store.name"
	KeyStoreEmail            = "store.email"
	KeyStoreWhatsApp         = "store.whatsapp_number"
	KeyStoreAddress          = "store.address"
	KeyDeliveryFee           = "order.delivery_fee"
	KeyMinimumOrderAmount    = "order.minimum_amount"
	KeyStaleAfterHours       = "order.stale_after_hours"
	KeyAllowNegativeStock    = "inventory.allow_negative_stock"
	KeyMailEnabled           = "notifications.mail_enabled"
	KeyWhatsAppEnabled       = "notifications.whatsapp_enabled"
	KeyLowStockDigestEnabled = "notifications.low_stock_digest"
)

// Setting is one entry of the business key-value store
type Setting struct {
	Key         string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Type        ValueType `gorm:"type:varchar(10);not null" json:"type"`
	Group       string    `gorm:"column:group_name;type:varchar(50);not null;default:'general'" json:"group"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	IsPublic    bool      `gorm:"not null;default:false" json:"is_public"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "settings"
}

// NewSetting validates value against its type
func NewSetting(key, value string, typ ValueType, group, description string, public bool) (*Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 100 {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key must be 1-100 characters")
	}
	if group == "" {
		group = "general"
	}
	s := &Setting{Key: key, Type: typ, Group: group, Description: description, IsPublic: public}
	if err := s.SetValue(value); err != nil {
		return nil, err
	}
	return s, nil
}

// SetValue validates and stores a new value
func (s *Setting) SetValue(value string) error {
	if err := Validate(s.Type, value); err != nil {
		return err
	}
	s.Value = value
	s.UpdatedAt = time.Now()
	return nil
}

// Validate checks that value parses as typ
func Validate(typ ValueType, value string) error {
	var err error
	switch typ {
	case TypeString:
	case TypeInt:
		_, err = strconv.ParseInt(value, 10, 64)
	case TypeDecimal:
		_, err = decimal.NewFromString(value)
	case TypeBool:
		_, err = strconv.ParseBool(value)
	case TypeJSON:
		if !json.Valid([]byte(value)) {
			err = strconv.ErrSyntax
		}
	default:
		return shared.NewDomainError("INVALID_TYPE", "Unknown setting type")
	}
	if err != nil {
		return shared.NewDomainError("INVALID_VALUE", "Value does not match setting type "+string(typ))
	}
	return nil
}

// Bool returns the value as bool, or def when it does not parse
func (s *Setting) Bool(def bool) bool {
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return def
	}
	return v
}

// Int returns the value as int64, or def when it does not parse
func (s *Setting) Int(def int64) int64 {
	v, err := strconv.ParseInt(s.Value, 10, 64)
	if err != nil {
		return def
	}
	return v
}

// Decimal returns the value as decimal, or def when it does not parse
func (s *Setting) Decimal(def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(s.Value)
	if err != nil {
		return def
	}
	return v
}

// Defaults are seeded on first start when the key is missing
func Defaults() []Setting {
	return []Setting{
		{Key: KeyStoreName, Value: "Panificadora Nancy", Type: TypeString, Group: "store", IsPublic: true, Description: "Nombre comercial"},
		{Key: KeyStoreEmail, Value: "pedidos@panificadoranancy.com", Type: TypeString, Group: "store", IsPublic: true, Description: "Correo de contacto"},
		{Key: KeyStoreWhatsApp, Value: "", Type: TypeString, Group: "store", IsPublic: true, Description: "Número de WhatsApp para avisos de pedidos"},
		{Key: KeyStoreAddress, Value: "", Type: TypeString, Group: "store", IsPublic: true, Description: "Dirección de la tienda"},
		{Key: KeyDeliveryFee, Value: "10.00", Type: TypeDecimal, Group: "order", IsPublic: true, Description: "Costo de envío"},
		{Key: KeyMinimumOrderAmount, Value: "0", Type: TypeDecimal, Group: "order", IsPublic: true, Description: "Monto mínimo de pedido en línea"},
		{Key: KeyStaleAfterHours, Value: "48", Type: TypeInt, Group: "order", Description: "Horas tras las cuales un pedido pendiente sin pago se cancela"},
		{Key: KeyAllowNegativeStock, Value: "false", Type: TypeBool, Group: "inventory", Description: "Permitir vender sin stock"},
		{Key: KeyMailEnabled, Value: "true", Type: TypeBool, Group: "notifications", Description: "Enviar correos"},
		{Key: KeyWhatsAppEnabled, Value: "false", Type: TypeBool, Group: "notifications", Description: "Enviar mensajes de WhatsApp"},
		{Key: KeyLowStockDigestEnabled, Value: "true", Type: TypeBool, Group: "notifications", Description: "Resumen diario de stock bajo"},
	}
}
