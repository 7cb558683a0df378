package repository

import (
	"context"
	"time"

	"swedavia-flights-service/internal/domain/entity"
	"swedavia-flights-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// swedishAirports is the fixed set of Swedavia airports the API serves
var swedishAirports = map[string]string{
	"ARN": "Stockholm Arlanda",
	"BMA": "Stockholm Bromma",
	"GOT": "Göteborg Landvetter",
	"MMX": "Malmö",
	"LLA": "Luleå",
	"UME": "Umeå",
	"VBY": "Visby",
	"KRN": "Kiruna",
	"RNB": "Ronneby",
	"VST": "Stockholm Västerås",
	"ORB": "Örebro",
	"NYO": "Stockholm Skavsta",
}

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// Airports GORM model for database mapping
type Airports struct {
	IATA      string `gorm:"column:iata;primaryKey"`
	Name      string `gorm:"column:name"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "m_airports"
}

// NewGormAirportRepository creates a new GORM airport repository and seeds
// the reference table with the Swedavia airport set
func NewGormAirportRepository(db *gorm.DB) (repository.AirportRepository, error) {
	if err := db.AutoMigrate(&Airports{}); err != nil {
		return nil, err
	}

	rows := make([]Airports, 0, len(swedishAirports))
	for iata, name := range swedishAirports {
		rows = append(rows, Airports{IATA: iata, Name: name})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "iata"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&rows).Error; err != nil {
		return nil, err
	}

	return &GormAirportRepository{db: db}, nil
}

// GetByIATA finds an airport by IATA code
func (r *GormAirportRepository) GetByIATA(ctx context.Context, iata string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("iata = ?", iata).First(&airport)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.Airport{
		IATA:      airport.IATA,
		Name:      airport.Name,
		CreatedAt: airport.CreatedAt,
		UpdatedAt: airport.UpdatedAt,
		DeletedAt: airport.DeletedAt,
	}, nil
}

// All returns every airport ordered by IATA code
func (r *GormAirportRepository) All(ctx context.Context) ([]*entity.Airport, error) {
	var rows []Airports
	result := r.db.WithContext(ctx).Order("iata").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	airports := make([]*entity.Airport, 0, len(rows))
	for _, row := range rows {
		airports = append(airports, &entity.Airport{
			IATA:      row.IATA,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			DeletedAt: row.DeletedAt,
		})
	}
	return airports, nil
}
