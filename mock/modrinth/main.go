// Command modrinth serves a deterministic fake of the Modrinth v2 API for
// local development. Point registries.modrinth.base_url at it.
package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-discovery-service/internal/infra/registry/modrinth"
)

const (
	addr        = ":8082"
	catalogSize = 180
	maxLimit    = 100
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	hits, projects := catalog()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(func(c *fiber.Ctx) error {
		time.Sleep(time.Duration(30+rand.IntN(120)) * time.Millisecond)
		err := c.Next()
		logger.Info("request", zap.String("method", c.Method()), zap.String("uri", c.OriginalURL()), zap.Int("status", c.Response().StatusCode()))
		return err
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"name": "modrinth-mock", "version": "2"})
	})

	app.Get("/v2/search", func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 10)
		if limit < 0 || limit > maxLimit || offset < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "description": "bad offset or limit"})
		}

		term := strings.ToLower(c.Query("query"))
		matched := make([]modrinth.Hit, 0, len(hits))
		for _, h := range hits {
			if term == "" || strings.Contains(strings.ToLower(h.Title), term) {
				matched = append(matched, h)
			}
		}

		start := min(offset, len(matched))
		end := min(start+limit, len(matched))
		return c.JSON(modrinth.SearchResponse{
			Hits:      matched[start:end],
			Offset:    offset,
			Limit:     limit,
			TotalHits: int64(len(matched)),
		})
	})

	project := func(c *fiber.Ctx) (*modrinth.Project, bool) {
		p, ok := projects[c.Params("id")]
		return p, ok
	}

	app.Get("/v2/project/:id", func(c *fiber.Ctx) error {
		p, ok := project(c)
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.JSON(p)
	})

	app.Get("/v2/project/:id/members", func(c *fiber.Ctx) error {
		p, ok := project(c)
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.JSON([]modrinth.Member{
			{Role: "Owner", Ordering: 0, User: modrinth.User{ID: "u-" + p.ID, Username: "dev-" + p.Slug}},
			{Role: "Contributor", Ordering: 1, User: modrinth.User{ID: "u2-" + p.ID, Username: "helper"}},
		})
	})

	app.Get("/v2/project/:id/version", func(c *fiber.Ctx) error {
		p, ok := project(c)
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.JSON(versionsFor(p))
	})

	logger.Info("mock modrinth listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("listen failed", zap.Error(err))
	}
}

// catalog returns hits sorted by downloads and the same projects keyed by
// both id and slug.
func catalog() ([]modrinth.Hit, map[string]*modrinth.Project) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	loaders := [][]string{{"fabric"}, {"fabric", "quilt"}, {"neoforge"}, {"forge"}}

	hits := make([]modrinth.Hit, catalogSize)
	projects := make(map[string]*modrinth.Project, 2*catalogSize)
	for i := range hits {
		id := fmt.Sprintf("MOCK%04d", i+1)
		slug := fmt.Sprintf("mock-project-%03d", i+1)
		tags := append([]string{"optimization"}, loaders[i%len(loaders)]...)

		hits[i] = modrinth.Hit{
			ProjectID:    id,
			ProjectType:  "mod",
			Slug:         slug,
			Author:       "dev-" + slug,
			Title:        fmt.Sprintf("Mock Project %03d", i+1),
			Description:  "A mock Modrinth project.",
			Categories:   tags,
			Versions:     []string{"1.20.1", "1.21.1"},
			Downloads:    int64(catalogSize-i) * 180_000,
			Follows:      int64(catalogSize-i) * 40,
			DateCreated:  base.AddDate(0, 0, -i),
			DateModified: base.AddDate(0, 0, i%45),
		}

		p := &modrinth.Project{
			ID:           id,
			Slug:         slug,
			ProjectType:  "mod",
			Title:        hits[i].Title,
			Description:  hits[i].Description,
			Body:         "# " + hits[i].Title + "\n\nMock body.",
			Categories:   []string{"optimization"},
			Loaders:      loaders[i%len(loaders)],
			GameVersions: hits[i].Versions,
			Downloads:    hits[i].Downloads,
			Followers:    hits[i].Follows,
			Published:    hits[i].DateCreated,
			Updated:      hits[i].DateModified,
			License:      &modrinth.License{ID: "MIT", Name: "MIT License"},
		}
		projects[id] = p
		projects[slug] = p
	}
	return hits, projects
}

func versionsFor(p *modrinth.Project) []modrinth.Version {
	versions := make([]modrinth.Version, 0, len(p.GameVersions))
	for i, gv := range p.GameVersions {
		number := fmt.Sprintf("mc%s-1.%d.0", gv, i)
		versions = append(versions, modrinth.Version{
			ID:            fmt.Sprintf("%s-v%d", p.ID, i),
			ProjectID:     p.ID,
			Name:          p.Title + " " + number,
			VersionNumber: number,
			GameVersions:  []string{gv},
			Loaders:       p.Loaders,
			VersionType:   "release",
			DatePublished: p.Updated.AddDate(0, 0, -7*i),
			Files: []modrinth.File{{
				URL:      fmt.Sprintf("https://cdn.example.invalid/%s/%s.jar", p.ID, number),
				Filename: p.Slug + "-" + number + ".jar",
				Primary:  true,
				Size:     512 << 10,
			}},
		})
	}
	return versions
}
