package domains

import (
	"encoding/json"
	"fmt"
	"os"
)

// Domain binds a topic identifier to the instruction text that keeps the
// assistant inside that topic.
type Domain struct {
	ID           string `json:"domain_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

var builtin = []Domain{
	{
		ID:          "html_css_js",
		Name:        "HTML, CSS & JavaScript",
		Description: "Front-end development with HTML, CSS and JavaScript",
		SystemPrompt: "You are an assistant specialized exclusively in HTML, CSS and JavaScript. " +
			"Only answer questions related to these three technologies. " +
			"If the user asks about anything outside HTML/CSS/JS, apologize politely and redirect them to the chosen topic. " +
			"Give clear, detailed answers with practical examples where appropriate.",
	},
	{
		ID:          "python",
		Name:        "Python Programming",
		Description: "Python programming and application development",
		SystemPrompt: "You are an assistant specialized exclusively in Python programming. " +
			"Only answer questions related to the Python language. " +
			"If the user asks about other programming languages, apologize politely and redirect them to Python. " +
			"Give clear answers with practical code examples.",
	},
	{
		ID:          "web_development",
		Name:        "Web Development",
		Description: "General web development",
		SystemPrompt: "You are an assistant specialized in web development. " +
			"Only answer questions related to building websites and web applications. " +
			"If the user asks about a topic outside web development, apologize politely and redirect them. " +
			"Give comprehensive answers with practical examples.",
	},
}

// Registry holds the known domains in a stable order. Built-in domains can be
// extended or overridden by entries from an optional JSON file.
type Registry struct {
	domains map[string]Domain
	order   []string
	def     string
}

func NewRegistry(overridePath, defaultDomain string) (*Registry, error) {
	r := &Registry{domains: make(map[string]Domain)}
	for _, d := range builtin {
		r.add(d)
	}
	if overridePath != "" {
		if err := r.loadFile(overridePath); err != nil {
			return nil, err
		}
	}
	if _, ok := r.domains[defaultDomain]; !ok {
		return nil, fmt.Errorf("default domain %q is not registered", defaultDomain)
	}
	r.def = defaultDomain
	return r, nil
}

func (r *Registry) add(d Domain) {
	if _, ok := r.domains[d.ID]; !ok {
		r.order = append(r.order, d.ID)
	}
	r.domains[d.ID] = d
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read domains file: %w", err)
	}
	var extra []Domain
	if err := json.Unmarshal(data, &extra); err != nil {
		return fmt.Errorf("parse domains file: %w", err)
	}
	for _, d := range extra {
		if d.ID == "" {
			return fmt.Errorf("domains file entry without domain_id")
		}
		r.add(d)
	}
	return nil
}

func (r *Registry) Get(id string) (Domain, bool) {
	d, ok := r.domains[id]
	return d, ok
}

func (r *Registry) Has(id string) bool {
	_, ok := r.domains[id]
	return ok
}

// List returns the domains in registration order.
func (r *Registry) List() []Domain {
	out := make([]Domain, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.domains[id])
	}
	return out
}

func (r *Registry) Default() string {
	return r.def
}
