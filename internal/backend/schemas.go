package backend

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBase = "https://anamnesa.local/schemas/"

const questionDef = `{
	"type": "object",
	"required": ["text"],
	"properties": {"text": {"type": "string"}}
}`

var startSchema = `{
	"type": "object",
	"required": ["step", "total_steps", "question"],
	"properties": {
		"step": {"type": "integer", "minimum": 1},
		"total_steps": {"type": "integer", "minimum": 1},
		"question": ` + questionDef + `
	}
}`

var stepSchema = `{
	"type": "object",
	"required": ["answer_text", "finished"],
	"properties": {
		"answer_text": {"type": "string"},
		"finished": {"type": "boolean"}
	},
	"if": {"properties": {"finished": {"const": false}}},
	"then": {
		"required": ["next_step", "next_question"],
		"properties": {
			"next_step": {"type": "integer", "minimum": 1},
			"next_question": ` + questionDef + `
		}
	}
}`

const finishSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"error": {"type": ["string", "null"]}
	}
}`

type schemaSet struct {
	start  *jsonschema.Schema
	step   *jsonschema.Schema
	finish *jsonschema.Schema
}

func compileSchemas() (*schemaSet, error) {
	start, err := compileSchema("start", startSchema)
	if err != nil {
		return nil, err
	}
	step, err := compileSchema("step", stepSchema)
	if err != nil {
		return nil, err
	}
	finish, err := compileSchema("finish", finishSchema)
	if err != nil {
		return nil, err
	}
	return &schemaSet{start: start, step: step, finish: finish}, nil
}

func compileSchema(name, schema string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := schemaBase + name + ".schema.json"
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("%s response schema load failed: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%s response schema compile failed: %w", name, err)
	}
	return compiled, nil
}
