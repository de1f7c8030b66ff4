package model

// 商品（飲料）。割引は商品全体（GlobalSale）か容量単位（DrinkVariant.Sale）で持つ。
// *int にしているのは「0%という明示的な割引」と「未設定」を区別するため。
type Drink struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SectionID   string `gorm:"type:varchar(255);not null;index" json:"section_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	ImgSrc      string `gorm:"type:varchar(500)" json:"img_src"`
	Ingredients string `gorm:"type:text" json:"ingredients"`
	Description string `gorm:"type:text" json:"description"`
	GlobalSale  *int   `json:"global_sale"`
}

// 容量・価格・在庫の単位。カートや注文が参照するのはこっち。
// Quantity（在庫）は常に0以上。減らすのはカート投入時、戻すのは取り消し時。
type DrinkVariant struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	DrinkID  int64  `gorm:"not null;index" json:"drink_id"`
	Volume   int    `gorm:"not null" json:"volume"`
	Price    int64  `gorm:"not null" json:"price"`
	Quantity int64  `gorm:"not null" json:"quantity"`
	Sale     *int   `json:"sale"`
	ImgSrc   string `gorm:"type:varchar(500)" json:"img_src"`
}
