package agent

import (
	"fmt"
	"strings"
	"time"
)

const basePrompt = `You are a helpful assistant for a notes app.
You can search notes using semantic search or query note metadata using SQL. You're a read-only assistant, so you can't help the user with operations that will modify the database.
Don't return responses in markdown format. Use plain text with line breaks if needed.

- If the user asks a question that requires searching the content of notes, use the search_notes tool.
    - Example: "Do I have a note about the meeting with John?"
    - Example: "What are the fruits that I usually buy?"

- If the user asks a question about note metadata (like dates), generate an SQL query and use the query_notes_metadata tool.
    - Example: "Give me a resume of what I did last week"

- If the user asks a question that requires both searching the content and metadata, use both tools and combine the results.

- The database schema below is the only schema available; only query the notes table.`

const dbSchema = `
create table notes (
  id bigint generated always as identity not null,
  user_id uuid not null,
  content text not null,
  embedding vector(768) null,
  created_at timestamp with time zone not null default (now() AT TIME ZONE 'utc'::text),
  updated_at timestamp with time zone not null default (now() AT TIME ZONE 'utc'::text),
  constraint notes_pkey primary key (id)
);`

type sqlExample struct {
	Request  string
	Response string
}

var sqlExamples = []sqlExample{
	{
		Request:  "Give me a resume of what I did last week",
		Response: "SELECT * FROM notes WHERE created_at >= '2024-01-01' AND created_at <= '2024-01-31'",
	},
	{
		Request:  "Give me a resume of my week so far",
		Response: "SELECT * FROM notes WHERE created_at >= '2024-01-01' AND created_at <= '2024-01-31'",
	},
	{
		Request:  "What did I wrote on sunday?",
		Response: "SELECT * FROM notes WHERE created_at::date = '2024-01-01'",
	},
	{
		Request:  "Give me a resume of my notes today",
		Response: "SELECT * FROM notes WHERE created_at::date = '2024-01-01'",
	},
}

// SystemPrompt builds the full system context: static instructions, the live
// schema, the current date (so "last week" resolves to real bounds) and
// worked request-to-SQL examples.
func SystemPrompt(now time.Time) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	sb.WriteString("\n\nHere is the database schema (PostgreSQL):\n")
	sb.WriteString(dbSchema)
	sb.WriteString(fmt.Sprintf("\n\nToday is %s.\n", now.Format("Monday (02) of January (01), 2006")))
	sb.WriteString("\nHere are some examples of how to query the database:\n")
	sb.WriteString(formatExamplesAsXML(sqlExamples))
	return sb.String()
}

func formatExamplesAsXML(examples []sqlExample) string {
	var sb strings.Builder
	sb.WriteString("<examples>\n")
	for _, example := range examples {
		sb.WriteString("  <example>\n")
		sb.WriteString("    <request>" + example.Request + "</request>\n")
		sb.WriteString("    <response>" + example.Response + "</response>\n")
		sb.WriteString("  </example>\n")
	}
	sb.WriteString("</examples>")
	return sb.String()
}
