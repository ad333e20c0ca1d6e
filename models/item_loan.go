// models/item_loan.go
package models

import "time"

const (
	AssetModelTable = "inv_asset_models"
	AssetItemTable  = "inv_asset_items"
	StockItemTable  = "inv_stock_items"
	LoanTable       = "inv_loans"
	LoanLineTable   = "inv_loan_lines"
)

type AssetStatus string

const (
	AssetInStock  AssetStatus = "EN_STOCK"
	AssetLoaned   AssetStatus = "PRETE"
	AssetBroken   AssetStatus = "HS"
	AssetInRepair AssetStatus = "REPARATION"
)

func (s AssetStatus) Valid() bool {
	switch s {
	case AssetInStock, AssetLoaned, AssetBroken, AssetInRepair:
		return true
	}
	return false
}

type LoanStatus string

const (
	LoanOpen   LoanStatus = "OPEN"
	LoanClosed LoanStatus = "CLOSED"
)

// AssetModel 是设备模板（类型/品牌/型号），核心只读
type AssetModel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Type      string    `gorm:"size:80;not null" json:"type"`
	Brand     string    `gorm:"size:120;not null" json:"brand"`
	Model     string    `gorm:"size:120;not null" json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AssetItem struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	Tag          string      `gorm:"size:120;uniqueIndex;not null" json:"tag"`
	Serial       *string     `gorm:"size:120;uniqueIndex" json:"serial,omitempty"`
	Status       AssetStatus `gorm:"size:20;not null;default:'EN_STOCK'" json:"status"`
	AssetModelID string      `gorm:"type:uuid;index;not null" json:"assetModelId"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// StockItem 是按数量管理的耗材；0 <= Loaned <= Quantity
type StockItem struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Quantity     int       `gorm:"not null;default:0" json:"quantity"`
	Loaned       int       `gorm:"not null;default:0" json:"loaned"`
	AssetModelID string    `gorm:"type:uuid;index;not null" json:"assetModelId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s StockItem) Available() int { return s.Quantity - s.Loaned }

type Loan struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID  string     `gorm:"type:uuid;index;not null" json:"employeeId"`
	CreatedByID string     `gorm:"size:120;not null" json:"createdById"`
	Status      LoanStatus `gorm:"size:10;index;not null;default:'OPEN'" json:"status"`
	OpenedAt    time.Time  `gorm:"index;not null" json:"openedAt"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`

	PickupSignatureURL *string    `gorm:"size:500" json:"pickupSignatureUrl,omitempty"`
	PickupSignedAt     *time.Time `json:"pickupSignedAt,omitempty"`
	ReturnSignatureURL *string    `gorm:"size:500" json:"returnSignatureUrl,omitempty"`
	ReturnSignedAt     *time.Time `json:"returnSignedAt,omitempty"`

	Lines     []LoanLine `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (l Loan) IsOpen() bool { return l.Status == LoanOpen }

func (l Loan) HasSignature() bool {
	return l.PickupSignatureURL != nil || l.ReturnSignatureURL != nil
}

// SignatureURLs 返回已存在的签名文件地址
func (l Loan) SignatureURLs() []string {
	var urls []string
	if l.PickupSignatureURL != nil {
		urls = append(urls, *l.PickupSignatureURL)
	}
	if l.ReturnSignatureURL != nil {
		urls = append(urls, *l.ReturnSignatureURL)
	}
	return urls
}

// LoanLine 的 AssetItemID / StockItemID 二选一，由 Target() 统一成 LineTarget
type LoanLine struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	LoanID      string    `gorm:"type:uuid;index;not null" json:"loanId"`
	AssetItemID *string   `gorm:"type:uuid;index" json:"assetItemId,omitempty"`
	StockItemID *string   `gorm:"type:uuid;index" json:"stockItemId,omitempty"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	AddedAt     time.Time `gorm:"not null" json:"addedAt"`

	AssetItem *AssetItem `gorm:"foreignKey:AssetItemID" json:"assetItem,omitempty"`
	StockItem *StockItem `gorm:"foreignKey:StockItemID" json:"stockItem,omitempty"`
}

func (AssetModel) TableName() string { return AssetModelTable }
func (AssetItem) TableName() string  { return AssetItemTable }
func (StockItem) TableName() string  { return StockItemTable }
func (Loan) TableName() string       { return LoanTable }
func (LoanLine) TableName() string   { return LoanLineTable }
