// Package seed loads initial content from a YAML file keyed by resource
// name and creates it through the resource engine.
package seed

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"site-content-api/internal/model"
	"site-content-api/internal/resource"
	"site-content-api/internal/store"
)

// File maps a resource name to the documents to create.
type File map[string][]map[string]any

func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// Apply creates the documents of each resource whose collection is empty.
// Every document passes the same validation as an API create. It returns the
// number of records created.
func Apply(ctx context.Context, f File, who model.Identity, services ...*resource.Service) (int, error) {
	known := make(map[string]bool, len(services))
	created := 0
	for _, svc := range services {
		name := svc.Definition().Name
		known[name] = true
		docs := f[name]
		if len(docs) == 0 {
			continue
		}

		n, err := svc.Count(ctx, store.Query{})
		if err != nil {
			return created, err
		}
		if n > 0 {
			log.WithFields(log.Fields{"resource": name, "existing": n}).Info("seed skipped, collection not empty")
			continue
		}

		for i, doc := range docs {
			if _, err := svc.Create(ctx, who, doc); err != nil {
				return created, fmt.Errorf("seed %s[%d]: %w", name, i, err)
			}
			created++
		}
		log.WithFields(log.Fields{"resource": name, "count": len(docs)}).Info("seeded")
	}

	for name := range f {
		if !known[name] {
			log.WithField("resource", name).Warn("seed file names unknown resource")
		}
	}
	return created, nil
}
