package collection

// CardPrinting is one catalog printing.
// Rows are recreated at the start of every run and never updated in place.
type CardPrinting struct {
	ID         uint   `gorm:"primaryKey"`
	SetCode    string `gorm:"column:set_code;size:16;not null;uniqueIndex:idx_printing_identity,priority:1"`
	Number     string `gorm:"column:number;size:32;not null;uniqueIndex:idx_printing_identity,priority:2"`
	Finish     Finish `gorm:"column:finish;size:16;not null;uniqueIndex:idx_printing_identity,priority:3"`
	Name       string `gorm:"column:name;size:255;not null"`
	SetName    string `gorm:"column:set_name;size:255"`
	OnlineOnly bool   `gorm:"column:online_only;not null;default:false"`
}

// TableName overrides the table name.
func (CardPrinting) TableName() string {
	return "card_printings"
}

// Identity returns the natural key of the printing.
func (p CardPrinting) Identity() Identity {
	return Identity{SetCode: p.SetCode, Number: p.Number, Finish: p.Finish}
}

// CollectionEntry is a user-owned quantity record for one printing, read from
// a single source during the run.
type CollectionEntry struct {
	ID         uint         `gorm:"primaryKey"`
	Source     Source       `gorm:"column:source;size:16;not null;uniqueIndex:idx_entry_source_printing,priority:1"`
	PrintingID uint         `gorm:"column:printing_id;not null;uniqueIndex:idx_entry_source_printing,priority:2"`
	Printing   CardPrinting `gorm:"foreignKey:PrintingID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Quantity   int          `gorm:"column:quantity;not null;default:0;check:chk_entry_quantity,quantity >= 0"`
	Notes      string       `gorm:"column:notes;type:text"`
	Row        int          `gorm:"column:source_row;not null;default:0"`
}

// TableName overrides the table name.
func (CollectionEntry) TableName() string {
	return "collection_entries"
}
