// Command curseforge serves a deterministic fake of the CurseForge API for
// local development. Point registries.curseforge.base_url at it.
package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-discovery-service/internal/infra/registry/curseforge"
)

const (
	addr        = ":8081"
	catalogSize = 240
	windowLimit = 10000
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	mods := catalog()
	byID := make(map[string]*curseforge.Mod, len(mods))
	for i := range mods {
		byID[fmt.Sprint(mods[i].ID)] = &mods[i]
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// latency and api key check, like the real service
	app.Use(func(c *fiber.Ctx) error {
		time.Sleep(time.Duration(50+rand.IntN(150)) * time.Millisecond)
		if c.Get("x-api-key") == "" {
			return c.SendStatus(fiber.StatusForbidden)
		}
		err := c.Next()
		logger.Info("request", zap.String("method", c.Method()), zap.String("uri", c.OriginalURL()), zap.Int("status", c.Response().StatusCode()))
		return err
	})

	app.Get("/v1/games/:gameId", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": fiber.Map{"id": 432, "name": "Minecraft", "slug": "minecraft"}})
	})

	app.Get("/v1/mods/search", func(c *fiber.Ctx) error {
		index := c.QueryInt("index", 0)
		pageSize := c.QueryInt("pageSize", 50)
		if index+pageSize > windowLimit {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errorCode": 400, "errorMessage": "index + pageSize exceeds 10000"})
		}

		term := strings.ToLower(c.Query("searchFilter"))
		matched := make([]curseforge.Mod, 0, len(mods))
		for _, m := range mods {
			if term == "" || strings.Contains(strings.ToLower(m.Name), term) {
				matched = append(matched, m)
			}
		}

		start := min(index, len(matched))
		end := min(start+pageSize, len(matched))
		return c.JSON(curseforge.SearchResponse{
			Data: matched[start:end],
			Pagination: curseforge.Pagination{
				Index:       index,
				PageSize:    pageSize,
				ResultCount: end - start,
				TotalCount:  int64(len(matched)),
			},
		})
	})

	app.Get("/v1/mods/:modId", func(c *fiber.Ctx) error {
		m, ok := byID[c.Params("modId")]
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.JSON(curseforge.ModResponse{Data: *m})
	})

	app.Get("/v1/mods/:modId/description", func(c *fiber.Ctx) error {
		m, ok := byID[c.Params("modId")]
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.JSON(curseforge.DescriptionResponse{Data: "<p>" + m.Summary + "</p>"})
	})

	app.Get("/v1/mods/:modId/files", func(c *fiber.Ctx) error {
		m, ok := byID[c.Params("modId")]
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		files := filesFor(m)
		return c.JSON(curseforge.FilesResponse{
			Data:       files,
			Pagination: curseforge.Pagination{PageSize: len(files), ResultCount: len(files), TotalCount: int64(len(files))},
		})
	})

	logger.Info("mock curseforge listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("listen failed", zap.Error(err))
	}
}

// catalog builds mods sorted by downloads, highest first.
func catalog() []curseforge.Mod {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	forge, fabric := 1, 4

	mods := make([]curseforge.Mod, catalogSize)
	for i := range mods {
		id := int64(300000 + i)
		loader := &forge
		if i%2 == 1 {
			loader = &fabric
		}
		mods[i] = curseforge.Mod{
			ID:            id,
			GameID:        432,
			ClassID:       6,
			Name:          fmt.Sprintf("Curated Mod %03d", i+1),
			Slug:          fmt.Sprintf("curated-mod-%03d", i+1),
			Summary:       "A curated example mod.",
			Links:         curseforge.Links{WebsiteURL: fmt.Sprintf("https://www.curseforge.com/minecraft/mc-mods/curated-mod-%03d", i+1)},
			DownloadCount: int64(catalogSize-i) * 250_000,
			ThumbsUpCount: int64(catalogSize - i),
			Authors:       []curseforge.Author{{ID: 1000 + int64(i%7), Name: fmt.Sprintf("author%d", i%7)}},
			Categories:    []curseforge.Category{{ID: 412, Name: "Technology", Slug: "technology", ClassID: 6}},
			LatestFilesIndexes: []curseforge.FileIndex{
				{GameVersion: "1.20.1", FileID: id*10 + 1, ModLoader: loader},
			},
			DateCreated:  base.AddDate(0, 0, -i),
			DateModified: base.AddDate(0, 0, i%30),
		}
	}
	return mods
}

func filesFor(m *curseforge.Mod) []curseforge.File {
	files := make([]curseforge.File, 0, 3)
	for i, gv := range []string{"1.20.1", "1.19.2", "1.18.2"} {
		files = append(files, curseforge.File{
			ID:            m.ID*10 + int64(i) + 1,
			ModID:         m.ID,
			DisplayName:   fmt.Sprintf("%s %s", m.Name, gv),
			FileName:      fmt.Sprintf("%s-%s.jar", m.Slug, gv),
			ReleaseType:   1,
			FileDate:      m.DateModified.AddDate(0, 0, -30*i),
			FileLength:    1 << 20,
			DownloadCount: m.DownloadCount / int64(i+2),
			GameVersions:  []string{gv, "Forge"},
		})
	}
	return files
}
