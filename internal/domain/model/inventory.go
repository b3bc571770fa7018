package model

// 商品ごとの在庫。product_idごとに1行だけ。
type Inventory struct {
	ProductID int64 `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"product_id"`
	Stock     int64 `gorm:"column:stock;not null;check:chk_inventory_stock_non_negative,stock >= 0" json:"stock"`
}

func (Inventory) TableName() string {
	return "inventory"
}
