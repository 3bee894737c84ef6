package publication

import "github.com/wilber023/poust-microservicio/internal/api/handlers"

var createSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"visibility": {"type": "string", "enum": ["public", "private", "friends"]}
	},
	"additionalProperties": false
}`)

var updateSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"visibility": {"type": "string", "enum": ["public", "private", "friends"]}
	},
	"minProperties": 1,
	"additionalProperties": false
}`)

var addCommentSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"text": {"type": "string", "minLength": 1},
		"parentCommentId": {"type": "string"}
	},
	"required": ["text"],
	"additionalProperties": false
}`)

var editCommentSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"text": {"type": "string", "minLength": 1}
	},
	"required": ["text"],
	"additionalProperties": false
}`)
