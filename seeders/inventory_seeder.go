package seeders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seedItem struct {
	ID          string
	Description string
	Maker       string
	SerialNo    string
	AssetNo     string
	Base        string
}

var seedItems = []seedItem{
	{ID: "ITM-0001", Description: "Pressure Gauge 0-100 bar", Maker: "WIKA", SerialNo: "PG-4471", AssetNo: "AST-0001", Base: "Lemal"},
	{ID: "ITM-0002", Description: "Digital Multimeter", Maker: "Fluke", SerialNo: "FL-87V-220", AssetNo: "AST-0002", Base: "Lemal"},
	{ID: "ITM-0003", Description: "Torque Wrench 40-200 Nm", Maker: "Norbar", SerialNo: "NB-2089", AssetNo: "AST-0003", Base: "Lemal"},
	{ID: "ITM-0004", Description: "Gas Detector 4-in-1", Maker: "Drager", SerialNo: "DR-X-am-5000", AssetNo: "AST-0004", Base: "Base 2"},
	{ID: "ITM-0005", Description: "Infrared Thermometer", Maker: "Testo", SerialNo: "TS-830-T2", AssetNo: "AST-0005", Base: "Base 2"},
}

func seedInventory(ctx context.Context, db *pgxpool.Pool) error {
	for _, it := range seedItems {
		_, err := db.Exec(ctx, `
			INSERT INTO inventory_items (id, description, maker, serial_no, asset_no, base)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			it.ID, it.Description, it.Maker, it.SerialNo, it.AssetNo, it.Base)
		if err != nil {
			return err
		}
	}
	return nil
}
