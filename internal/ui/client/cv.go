package client

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/constella-app/constella-web/internal/ui/types"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed extraction_schema.json
var extractionSchemaJSON []byte

const extractionSchemaURL = "https://constella.app/schemas/cv-extraction.json"

var extractionSchema = mustCompileSchema(extractionSchemaURL, extractionSchemaJSON)

func mustCompileSchema(url string, content []byte) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s is not valid JSON: %v", url, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("could not add schema %s: %v", url, err))
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("could not compile schema %s: %v", url, err))
	}
	return schema
}

// ExtractSkills uploads a CV to the extraction endpoint and returns the categorised skills
func (c *Client) ExtractSkills(ctx context.Context, filename string, content io.Reader) (*types.ExtractionResponse, error) {
	raw, err := c.Request(ctx, "/cv/extract", &RequestOptions{
		Method: http.MethodPost,
		Multipart: &MultipartBody{
			FieldName: "file",
			FileName:  filename,
			Content:   content,
		},
	})
	if err != nil {
		return nil, err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, NewClientInternalError(err, "parsing extraction response")
	}
	if err := extractionSchema.Validate(instance); err != nil {
		return nil, &ClientError{
			StatusCode:  http.StatusOK,
			UserMessage: "We couldn't read the skills extracted from your CV. Please add them manually.",
			LogMessage:  fmt.Sprintf("extraction response failed schema validation: %v", err),
		}
	}

	var extraction types.ExtractionResponse
	if err := decodeInto(raw, &extraction, "decoding extraction response"); err != nil {
		return nil, err
	}

	return &extraction, nil
}

// SaveSkills stores the skills against the authenticated account and returns the number newly saved
func (c *Client) SaveSkills(ctx context.Context, skills []string) (int, error) {
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return 0, nil
	}

	raw, err := c.Request(ctx, "/cv/save-skills", &RequestOptions{
		Method: http.MethodPost,
		JSON:   types.SaveSkillsRequest{Skills: cleaned},
	})
	if err != nil {
		return 0, err
	}

	var res types.SaveSkillsResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, NewClientInternalError(err, "decoding save skills response")
	}
	return res.SavedSkills, nil
}
