// Package i18n is the bot's message catalog. Defaults are embedded; a
// catalog file may be loaded on top and hot-reloaded at runtime.
package i18n

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"errors"

	"github.com/valyala/fasttemplate"
)

var ErrNotFound = errors.New("not found")

//go:embed locales.json
var defaultLocales []byte

type message struct {
	template *fasttemplate.Template
	text     string
}

func (m *message) UnmarshalJSON(data []byte) error {
	var text string
	err := json.Unmarshal(data, &text)
	if err != nil {
		return err
	}
	m.text = text
	m.template, err = fasttemplate.NewTemplate(text, "{{", "}}")
	return err
}

// Catalog maps language code and message ID to a message template.
type Catalog struct {
	mu       *sync.RWMutex
	messages map[string]map[string]*message // map[lang]map[message_id]message
}

func New() (*Catalog, error) {
	c := &Catalog{
		mu: &sync.RWMutex{},
	}
	if err := c.LoadReader(bytes.NewReader(defaultLocales)); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the catalog with the contents of a JSON file. Satisfies
// watcher.Loader so edits to the file are picked up live.
func (c *Catalog) Load(path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	return c.LoadReader(f)
}

func (c *Catalog) LoadReader(r io.Reader) error {
	var messages map[string]map[string]*message
	if err := json.NewDecoder(r).Decode(&messages); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = messages
	return nil
}

func (c *Catalog) Get(lang, id string) (string, error) {
	m, ok := c.get(lang, id)
	if !ok {
		return "", ErrNotFound
	}
	return m.text, nil
}

func (c *Catalog) GetWithArgs(lang, id string, args map[string]string) (string, error) {
	m, ok := c.get(lang, id)
	if !ok {
		return "", ErrNotFound
	}
	return m.template.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		value, ok := args[tag]
		if !ok {
			return 0, fmt.Errorf("missing argument %s", tag)
		}
		return w.Write([]byte(value))
	})
}

func (c *Catalog) get(lang, id string) (*message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langMap, ok := c.messages[lang]
	if !ok {
		return nil, false
	}
	m, ok := langMap[id]
	return m, ok
}
