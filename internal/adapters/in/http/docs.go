package http

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

type openAPIDoc struct {
	json string
}

func (d openAPIDoc) ReadDoc() string {
	return d.json
}

var registerDocsOnce sync.Once

// registerDocs publishes the OpenAPI document to swag, where the swagger UI
// handler reads it. swag panics on a second registration under one name.
func registerDocs(swagger *openapi3.T) error {
	data, err := swagger.MarshalJSON()
	if err != nil {
		return err
	}
	registerDocsOnce.Do(func() {
		swag.Register(swag.Name, openAPIDoc{json: string(data)})
	})
	return nil
}
