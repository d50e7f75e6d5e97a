package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferenceData is the master data an order needs to satisfy its foreign keys.
type ReferenceData struct {
	Projects   []Project
	Suppliers  []Supplier
	Parts      []Part
	Warehouses []Warehouse
}

// SampleReferenceData is enough master data to register orders against an empty database.
func SampleReferenceData() ReferenceData {
	return ReferenceData{
		Projects: []Project{
			{ProjectId: 1, ShipName: "Hull 2401", ShipType: "LNG carrier", Status: "in-progress"},
			{ProjectId: 2, ShipName: "Hull 2402", ShipType: "Container ship", Status: "in-progress"},
		},
		Suppliers: []Supplier{
			{SupplierId: 1, Name: "Busan Steel Works", Country: "KR"},
			{SupplierId: 2, Name: "Nordic Marine Valves", Country: "NO"},
		},
		Parts: []Part{
			{PartId: 1, Name: "Hull plate 12mm", Unit: "ea", UnitWeight: decimal.NewNullDecimal(decimal.RequireFromString("480.000"))},
			{PartId: 2, Name: "Ball valve DN150", Unit: "ea", UnitWeight: decimal.NewNullDecimal(decimal.RequireFromString("62.500"))},
			{PartId: 3, Name: "Cable tray 3m", Unit: "ea"},
		},
		Warehouses: []Warehouse{
			{WarehouseId: 1, Name: "Yard A", Location: "Geoje"},
			{WarehouseId: 2, Name: "Yard B", Location: "Ulsan"},
		},
	}
}

// SeedReferenceData inserts the given rows, leaving rows that already exist untouched.
func SeedReferenceData(db *gorm.DB, data ReferenceData) error {
	return db.Transaction(func(tx *gorm.DB) error {
		insert := func(rows any) error {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(rows).Error
		}
		if len(data.Projects) > 0 {
			if err := insert(&data.Projects); err != nil {
				return err
			}
		}
		if len(data.Suppliers) > 0 {
			if err := insert(&data.Suppliers); err != nil {
				return err
			}
		}
		if len(data.Parts) > 0 {
			if err := insert(&data.Parts); err != nil {
				return err
			}
		}
		if len(data.Warehouses) > 0 {
			if err := insert(&data.Warehouses); err != nil {
				return err
			}
		}
		return nil
	})
}
