package model

// Config is a single-row-per-key settings table. Currently only the active
// quarter lives here.
// swagger:model Config
type Config struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"size:255;not null" json:"value"`
}

func (Config) TableName() string {
	return "configs"
}

const ActiveQuarterKey = "active_quarter"

const DefaultQuarter = "Q1"

var ValidQuarters = []string{"Q1", "Q2", "Q3", "Q4"}

func ValidQuarter(q string) bool {
	for _, v := range ValidQuarters {
		if q == v {
			return true
		}
	}
	return false
}
