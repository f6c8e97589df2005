// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; repositories convert with ToDomain/FromDomain.
//
// The SQL files in migrations/ describe the same schema
// for PostgreSQL; AutoMigrate on these models is used for SQLite and tests.
package models
