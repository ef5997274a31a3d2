package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in site defaults
const (
	DefaultSiteName      = "Deno Land Indonesia"
	DefaultTitle         = "Third Party Modules"
	DefaultModuleHost    = "denoland.id"
	DefaultBranch        = "master"
	DefaultScript        = "mod.ts"
	DefaultSubmitFormURL = "https://airtable.com/shreNZcwvO3tM19L1"
	DefaultGitHubURL     = "https://github.com/denoland-id"
	defaultIntro         = "Berikut merupakan daftar modul Deno karya para developer Indonesia. 🇮🇩"
)

// Socials holds the community links shown on every page
type Socials struct {
	GitHub   string `yaml:"github"`
	Twitter  string `yaml:"twitter,omitempty"`
	Telegram string `yaml:"telegram,omitempty"`
}

// SiteConfig is the YAML site configuration
type SiteConfig struct {
	Name          string  `yaml:"name"`
	Title         string  `yaml:"title"`
	Description   string  `yaml:"description"`
	Socials       Socials `yaml:"socials"`
	SubmitFormURL string  `yaml:"submit_form_url"`
	ModuleHost    string  `yaml:"module_host"`
	DefaultBranch string  `yaml:"default_branch"`
	DefaultScript string  `yaml:"default_script"`
	// Intro is Markdown rendered above the module list
	Intro string `yaml:"intro"`
}

// DefaultSiteConfig returns the configuration used when no file is given
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Name:          DefaultSiteName,
		Title:         DefaultTitle,
		Description:   "Deno Land Indonesia third party modules",
		Socials:       Socials{GitHub: DefaultGitHubURL},
		SubmitFormURL: DefaultSubmitFormURL,
		ModuleHost:    DefaultModuleHost,
		DefaultBranch: DefaultBranch,
		DefaultScript: DefaultScript,
		Intro:         defaultIntro,
	}
}

// Validate checks that links are absolute URLs and required fields are set
func (c SiteConfig) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("site title is required")
	}
	if c.ModuleHost == "" || strings.ContainsAny(c.ModuleHost, "/ ") {
		return fmt.Errorf("invalid module host %q", c.ModuleHost)
	}
	links := map[string]string{
		"socials.github":  c.Socials.GitHub,
		"submit_form_url": c.SubmitFormURL,
	}
	for field, link := range links {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, link)
		}
	}
	return nil
}

// ParseSiteConfig decodes YAML over the defaults and validates the result
func ParseSiteConfig(data []byte) (SiteConfig, error) {
	cfg := DefaultSiteConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("failed to parse site config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, fmt.Errorf("invalid site config: %w", err)
	}
	return cfg, nil
}

// LoadSiteConfig reads a YAML site configuration file
func LoadSiteConfig(path string) (SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("failed to read site config: %w", err)
	}
	return ParseSiteConfig(data)
}

// Site is a validated configuration with its intro Markdown rendered
type Site struct {
	Config SiteConfig
	Intro  template.HTML
}

// NewSite validates cfg and renders its intro
func NewSite(cfg SiteConfig) (*Site, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	intro, err := RenderMarkdown(cfg.Intro)
	if err != nil {
		return nil, fmt.Errorf("failed to render intro: %w", err)
	}
	return &Site{Config: cfg, Intro: intro}, nil
}

// DefaultSite returns the site built from DefaultSiteConfig
func DefaultSite() *Site {
	site, err := NewSite(DefaultSiteConfig())
	if err != nil {
		panic(err)
	}
	return site
}

// URLTemplate is the documented import address pattern for modules
func (s *Site) URLTemplate() string {
	return "https://" + s.Config.ModuleHost + "/x/MODULE_NAME@BRANCH/SCRIPT.ts"
}

// ImportURL builds the external address of a module script. An empty
// branch selects the module's default branch.
func (s *Site) ImportURL(name, branch, script string) string {
	if script == "" {
		script = s.Config.DefaultScript
	}
	ref := url.PathEscape(name)
	if branch != "" {
		ref += "@" + url.PathEscape(branch)
	}
	return "https://" + s.Config.ModuleHost + "/x/" + ref + "/" + strings.TrimPrefix(script, "/")
}

// PageTitle formats a document title for a page
func (s *Site) PageTitle(page string) string {
	if page == "" {
		return s.Config.Name
	}
	return page + " | " + s.Config.Name
}
