package model

// カタログの区分（例：энергетики→energy-drinks）。
// IDはタイトルから翻訳APIで作るラテン文字スラッグ。
type Section struct {
	ID     string `gorm:"type:varchar(255);primaryKey" json:"id"`
	Title  string `gorm:"type:varchar(255);not null" json:"title"`
	ImgSrc string `gorm:"type:varchar(500)" json:"img_src"`
}
