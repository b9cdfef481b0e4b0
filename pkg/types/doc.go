// Package types defines the entity types, configuration and standard
// errors shared by the bikeledger store, catalog and form controller.
package types
