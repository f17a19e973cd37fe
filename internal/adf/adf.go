// Package adf builds the small subset of the Atlassian Document Format
// needed to render checklist comments on Jira issues.
package adf

import (
	"fmt"
	"strings"

	"github.com/sprintqa/qaboard/internal/checklist"
)

// Doc is the top-level ADF document posted as a comment body.
type Doc struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content"`
}

// Node is a generic ADF node. Only the fields this service emits are modeled.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
}

const (
	stateDone = "DONE"
	stateTodo = "TODO"
)

// ChecklistDoc renders the two checklists as one comment document: an "AC"
// section followed by a "DoD" section, each a level-3 heading plus a task
// list. An empty checklist renders as a single "(none)" task item.
func ChecklistDoc(ac, dod []checklist.Item) Doc {
	content := checklistSection("AC", ac)
	content = append(content, checklistSection("DoD", dod)...)
	return Doc{Type: "doc", Version: 1, Content: content}
}

func checklistSection(label string, items []checklist.Item) []Node {
	nodes := []Node{{
		Type:    "heading",
		Attrs:   map[string]any{"level": 3},
		Content: []Node{textNode(label)},
	}}

	list := Node{Type: "taskList"}
	if len(items) == 0 {
		list.Content = []Node{taskItem("(none)", false)}
		return append(nodes, list)
	}

	for i, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			text = fmt.Sprintf("(empty item %d)", i+1)
		}
		list.Content = append(list.Content, taskItem(text, item.Checked))
	}
	return append(nodes, list)
}

func taskItem(text string, done bool) Node {
	state := stateTodo
	if done {
		state = stateDone
	}
	return Node{
		Type:    "taskItem",
		Attrs:   map[string]any{"state": state},
		Content: []Node{textNode(text)},
	}
}

func textNode(text string) Node {
	return Node{Type: "text", Text: text}
}
