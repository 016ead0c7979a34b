// Package source installs the goccy/go-json driver as the default JSON driver
// when imported for side effects:
//
//	import _ "github.com/reoring/nonesafe/source"
package source

import (
	"github.com/reoring/nonesafe"
	drvgojson "github.com/reoring/nonesafe/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { nonesafe.SetJSONDriver(drvgojson.Driver()) }
