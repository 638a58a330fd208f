package models

import "time"

const (
	SignupSourceWeb = "web"
)

// Signup is one qualifying visit by a customer at a shop. Rows are
// append-only. The unique index over (shop_slug, phone, local_day) is the
// admission gate's race closer: two concurrent requests for the same
// customer on the same shop-local day can both pass the read check, but
// only one insert commits.
type Signup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShopSlug  string    `gorm:"type:varchar(191);not null;index;index:ux_signups_shop_phone_day,unique,priority:1" json:"shop_slug"`
	Phone     string    `gorm:"type:varchar(20);not null;index:ux_signups_shop_phone_day,unique,priority:2" json:"phone"`
	LocalDay  string    `gorm:"type:varchar(10);not null;index:ux_signups_shop_phone_day,unique,priority:3" json:"local_day"`
	Source    string    `gorm:"type:varchar(32);not null;default:'web'" json:"source"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
