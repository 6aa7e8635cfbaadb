package schema

import "sort"

// Kind classifies a field for analysis and rendering.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Relationship describes a named link to another entity. List relationships
// resolve to slices of related records.
type Relationship struct {
	Name       string
	Target     string
	List       bool
	LocalKey   string
	ForeignKey string
}

// Entity describes one entity type: its table, scalar fields and
// relationships. Dotted column paths are resolved by walking relationships.
type Entity struct {
	Name          string
	Table         string
	Fields        map[string]Kind
	Relationships map[string]Relationship
}

// FieldKind returns the kind of a scalar field on the entity.
func (e *Entity) FieldKind(name string) (Kind, bool) {
	k, ok := e.Fields[name]
	return k, ok
}

// Relationship returns the named relationship, if declared.
func (e *Entity) Relationship(name string) (Relationship, bool) {
	r, ok := e.Relationships[name]
	return r, ok
}

var timestamps = map[string]Kind{
	"created_at": KindTime,
	"updated_at": KindTime,
	"is_deleted": KindBool,
	"deleted_at": KindTime,
}

func fields(extra map[string]Kind) map[string]Kind {
	out := map[string]Kind{"id": KindInt}
	for k, v := range timestamps {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var entities = map[string]*Entity{
	"users": {
		Name:  "users",
		Table: "users",
		Fields: fields(map[string]Kind{
			"username":       KindString,
			"first_name":     KindString,
			"last_name":      KindString,
			"email":          KindString,
			"contact_number": KindString,
			"role_id":        KindInt,
			"environment_id": KindInt,
		}),
		Relationships: map[string]Relationship{
			"role":        {Name: "role", Target: "roles", LocalKey: "role_id", ForeignKey: "id"},
			"environment": {Name: "environment", Target: "environments", LocalKey: "environment_id", ForeignKey: "id"},
		},
	},
	"roles": {
		Name:  "roles",
		Table: "roles",
		Fields: fields(map[string]Kind{
			"name":          KindString,
			"description":   KindString,
			"is_super_user": KindBool,
		}),
	},
	"permissions": {
		Name:  "permissions",
		Table: "permissions",
		Fields: fields(map[string]Kind{
			"name":        KindString,
			"action":      KindString,
			"entity":      KindString,
			"description": KindString,
		}),
	},
	"role_permissions": {
		Name:  "role_permissions",
		Table: "role_permissions",
		Fields: fields(map[string]Kind{
			"role_id":       KindInt,
			"permission_id": KindInt,
		}),
		Relationships: map[string]Relationship{
			"role":       {Name: "role", Target: "roles", LocalKey: "role_id", ForeignKey: "id"},
			"permission": {Name: "permission", Target: "permissions", LocalKey: "permission_id", ForeignKey: "id"},
		},
	},
	"environments": {
		Name:  "environments",
		Table: "environments",
		Fields: fields(map[string]Kind{
			"name":        KindString,
			"description": KindString,
		}),
	},
	"question_types": {
		Name:  "question_types",
		Table: "question_types",
		Fields: fields(map[string]Kind{
			"type": KindString,
		}),
	},
	"questions": {
		Name:  "questions",
		Table: "questions",
		Fields: fields(map[string]Kind{
			"text":             KindText,
			"question_type_id": KindInt,
			"is_signature":     KindBool,
			"remarks":          KindText,
		}),
		Relationships: map[string]Relationship{
			"question_type": {Name: "question_type", Target: "question_types", LocalKey: "question_type_id", ForeignKey: "id"},
		},
	},
	"answers": {
		Name:  "answers",
		Table: "answers",
		Fields: fields(map[string]Kind{
			"value":   KindText,
			"remarks": KindText,
		}),
	},
	"forms": {
		Name:  "forms",
		Table: "forms",
		Fields: fields(map[string]Kind{
			"title":                KindString,
			"description":          KindText,
			"user_id":              KindInt,
			"is_public":            KindBool,
			"attachments_required": KindBool,
		}),
		Relationships: map[string]Relationship{
			"creator": {Name: "creator", Target: "users", LocalKey: "user_id", ForeignKey: "id"},
		},
	},
	"form_questions": {
		Name:  "form_questions",
		Table: "form_questions",
		Fields: fields(map[string]Kind{
			"form_id":      KindInt,
			"question_id":  KindInt,
			"order_number": KindInt,
		}),
		Relationships: map[string]Relationship{
			"form":     {Name: "form", Target: "forms", LocalKey: "form_id", ForeignKey: "id"},
			"question": {Name: "question", Target: "questions", LocalKey: "question_id", ForeignKey: "id"},
		},
	},
	"form_answers": {
		Name:  "form_answers",
		Table: "form_answers",
		Fields: fields(map[string]Kind{
			"form_question_id": KindInt,
			"answer_id":        KindInt,
			"remarks":          KindText,
		}),
		Relationships: map[string]Relationship{
			"form_question": {Name: "form_question", Target: "form_questions", LocalKey: "form_question_id", ForeignKey: "id"},
			"answer":        {Name: "answer", Target: "answers", LocalKey: "answer_id", ForeignKey: "id"},
		},
	},
	"form_assignments": {
		Name:  "form_assignments",
		Table: "form_assignments",
		Fields: fields(map[string]Kind{
			"form_id":                    KindInt,
			"entity_name":                KindString,
			"entity_id":                  KindInt,
			"assigned_entity_identifier": KindString,
		}),
		Relationships: map[string]Relationship{
			"form": {Name: "form", Target: "forms", LocalKey: "form_id", ForeignKey: "id"},
		},
	},
	"form_submissions": {
		Name:  "form_submissions",
		Table: "form_submissions",
		Fields: fields(map[string]Kind{
			"form_id":      KindInt,
			"submitted_by": KindString,
			"submitted_at": KindTime,
		}),
		Relationships: map[string]Relationship{
			"form":              {Name: "form", Target: "forms", LocalKey: "form_id", ForeignKey: "id"},
			"answers_submitted": {Name: "answers_submitted", Target: "answers_submitted", List: true, LocalKey: "id", ForeignKey: "form_submission_id"},
			"attachments":       {Name: "attachments", Target: "attachments", List: true, LocalKey: "id", ForeignKey: "form_submission_id"},
		},
	},
	"answers_submitted": {
		Name:  "answers_submitted",
		Table: "answers_submitted",
		Fields: fields(map[string]Kind{
			"question":           KindString,
			"question_type":      KindString,
			"answer":             KindText,
			"form_submission_id": KindInt,
			"column":             KindInt,
			"row":                KindInt,
			"cell_content":       KindText,
		}),
		Relationships: map[string]Relationship{
			"form_submission": {Name: "form_submission", Target: "form_submissions", LocalKey: "form_submission_id", ForeignKey: "id"},
		},
	},
	"attachments": {
		Name:  "attachments",
		Table: "attachments",
		Fields: fields(map[string]Kind{
			"form_submission_id": KindInt,
			"file_type":          KindString,
			"file_path":          KindText,
			"is_signature":       KindBool,
			"signature_position": KindText,
			"signature_author":   KindString,
		}),
		Relationships: map[string]Relationship{
			"form_submission": {Name: "form_submission", Target: "form_submissions", LocalKey: "form_submission_id", ForeignKey: "id"},
		},
	},
	"token_blocklist": {
		Name:  "token_blocklist",
		Table: "token_blocklist",
		Fields: map[string]Kind{
			"id":         KindInt,
			"jti":        KindString,
			"created_at": KindTime,
		},
	},
}

// Lookup returns the schema entry for an entity type.
func Lookup(entity string) (*Entity, bool) {
	e, ok := entities[entity]
	return e, ok
}

// Names lists all known entity types in sorted order.
func Names() []string {
	out := make([]string, 0, len(entities))
	for name := range entities {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
