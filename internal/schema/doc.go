// Package schema decodes type graph documents. The same field names are
// accepted in JSON, YAML, TOML and msgpack; identifiers are NFC-normalized
// before validation so that visually equal names compare equal.
package schema
