// Package models contains GORM-specific persistence models that map to database tables.
// Aggregates whose domain shape matches their table shape (catalog, orders) carry GORM
// tags directly; models here exist for entities where the two diverge.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - identity.go: User persistence model and mappers
package models
