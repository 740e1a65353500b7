// Package catalog loads the card catalog from a local data directory.
//
// Every *.json, *.yaml and *.yml file directly inside the directory is read in
// name order; meta.json is ignored. JSON files use the mtgjson layout (one set
// or a map of sets, optionally wrapped in "data"). YAML files hold one set and
// are meant for hand-maintained supplements.
//
// A missing, empty or malformed catalog is fatal. Problems are collected
// across all files and reported together as a collection.CatalogError.
package catalog
