// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain type with ToDomain and FromDomain.
//
//   - aggregate.go: columns shared by aggregate tables, including the lock version
//   - department.go: department services
//   - pharmacy.go: purchase orders, their items and the receipt log
package models
