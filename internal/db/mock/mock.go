package mock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "rubberstock/internal/log"
	"rubberstock/models"
)

// SeedStock is the stock list loaded into every mock database, in insertion
// order.
var SeedStock = []models.StockItem{
	{Name: "Negro", Quantity: 15},
	{Name: "Negro Pega", Quantity: 20},
	{Name: "Marino", Quantity: 10},
	{Name: "Crudo", Quantity: 17},
	{Name: "Blanco", Quantity: 22},
	{Name: "Beige", Quantity: 12},
}

// seedIngredients is shared by every seeded formula. Names carry the unit
// suffix the way the remote API stores them.
var seedIngredients = []models.FormulaIngredient{
	{Name: "Estabilizante [gr]", Quantity: 500},
	{Name: "Espumante [gr]", Quantity: 650},
}

// New returns an in-memory sqlite database seeded with the default stock and
// one formula per color. Each call gets its own database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := "file:rubberstock-mock-" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	tables := append(models.ServerModels(), &models.Setting{})
	if err := db.AutoMigrate(tables...); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range SeedStock {
			itemCopy := item
			if err := tx.Create(&itemCopy).Error; err != nil {
				return err
			}
		}

		for _, item := range SeedStock {
			formula := models.FormulaRecord{Name: item.Name, Version: 1}
			for position, ingredient := range seedIngredients {
				ingredient.Position = position
				formula.Ingredients = append(formula.Ingredients, ingredient)
			}
			if err := tx.Create(&formula).Error; err != nil {
				return err
			}
		}

		applog.Debug(ctx, "mock database seeded", "colors", len(SeedStock))
		return nil
	})
}
