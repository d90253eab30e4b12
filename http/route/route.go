// Package route pulls in every API version so its routes register
package route

import (
	_ "github.com/benedict-erwin/lokiquery/http/v1/route"
)
