package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"dreamsquare-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Имена схем, ключ - "<Name><Kind>/<version>".
const (
	CreateOfferRequest     = "CreateOfferRequest"
	RecordPaymentRequest   = "RecordPaymentRequest"
	PaymentIntentRequest   = "PaymentIntentRequest"
	CreatePropertyRequest  = "CreatePropertyRequest"
	UpdatePropertyRequest  = "UpdatePropertyRequest"
	AddWishlistItemRequest = "AddWishlistItemRequest"
	CreateReviewRequest    = "CreateReviewRequest"

	PurgeAgentListingsEvent = "PurgeAgentListingsEvent"
	MarketEvent             = "MarketEvent"

	V1 = "1.0.0"
)

// Корневые каталоги схем и суффикс ключа для каждого.
var schemaRoots = map[string]string{
	"requests": "Request",
	"events":   "Event",
}

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Сначала добавляем все схемы как ресурсы, чтобы работали ссылки через `$ref`
	for root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			file, err := schemas.SchemasFS.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(path, file); err != nil {
				log.Fatalf("failed to add schema resource %s: %v", path, err)
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	// Затем компилируем и регистрируем
	for root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			schema, err := compiler.Compile(path)
			if err != nil {
				log.Printf("WARNING: could not compile schema %s: %v. Skipping.", path, err)
				return nil
			}
			if key := generateKeyFromPath(path); key != "" {
				compiledSchemas[key] = schema
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and compiling schemas: %v", err)
		}
	}
}

// generateKeyFromPath преобразует путь вида "requests/create-offer/v1.json"
// в ключ вида "CreateOfferRequest/1.0.0", а "events/market/v2.json" - в "MarketEvent/2.0.0".
func generateKeyFromPath(path string) string {
	trimmed := strings.TrimSuffix(path, ".json")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return ""
	}
	suffix, ok := schemaRoots[parts[0]]
	if !ok {
		return ""
	}

	caser := cases.Title(language.English)

	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	if !strings.HasSuffix(name.String(), suffix) {
		name.WriteString(suffix)
	}

	version := strings.Replace(parts[2], "v", "", 1) + ".0.0"
	return fmt.Sprintf("%s/%s", name.String(), version)
}

// Validate проверяет JSON-документ по зарегистрированной схеме.
func Validate(name, version string, body []byte) error {
	key := fmt.Sprintf("%s/%s", name, version)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' version '%s' not found", name, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
