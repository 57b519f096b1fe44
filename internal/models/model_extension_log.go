package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/freshcrate/attendance/pkg/types"
)

// ExtensionLog records every granted validity extension.
// Use case: troubleshooting billing-relevant expiry dates.
type ExtensionLog struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;index:idx_subscription_id_id,priority:1;not null"`
	// Date is the calendar day the extension was credited for.
	Date types.Date `gorm:"column:date;type:varchar(10);not null"`
	// Kind is the skip kind that triggered the extension.
	Kind types.SkipKind `gorm:"column:kind;type:varchar(32);not null"`
	// Before stores the subscription before the extension in JSON format.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'"`
	// After stores the subscription after the extension in JSON format.
	After datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'"`
	// Extra stores additional context such as the trigger source.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (ExtensionLog) TableName() string {
	return "extension_log"
}
