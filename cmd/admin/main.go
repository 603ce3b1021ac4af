package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"resumaker/internal/config"
	"resumaker/internal/database"
	"resumaker/internal/resume"
	"resumaker/internal/store"
)

func main() {
	var (
		importPath   = flag.String("import", "", "导入简历 JSON 文件（单份简历或完整集合）")
		migrateDates = flag.Bool("migrate-dates", false, "将所有时间线日期迁移为规范格式")
		list         = flag.Bool("list", false, "列出全部简历")
		dbHost       = flag.String("db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
		dbPort       = flag.Int("db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
		dbName       = flag.String("db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
		dbUser       = flag.String("db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
		dbPass       = flag.String("db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
		sslMode      = flag.String("db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")
	)
	flag.Parse()

	if *importPath == "" && !*migrateDates && !*list {
		flag.Usage()
		os.Exit(2)
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := store.NewService(store.NewGormRepository(db), store.Options{Logger: logger})
	ctx := context.Background()

	if *importPath != "" {
		n, err := importFile(ctx, svc, *importPath)
		if err != nil {
			log.Fatalf("import %s: %v", *importPath, err)
		}
		fmt.Printf("已导入 %d 份简历\n", n)
	}

	if *migrateDates {
		n, err := svc.MigrateDates(ctx)
		if err != nil {
			log.Fatalf("migrate dates: %v", err)
		}
		fmt.Printf("已迁移 %d 份简历的日期\n", n)
	}

	if *list {
		items, err := svc.List(ctx)
		if err != nil {
			log.Fatalf("list resumes: %v", err)
		}
		for _, m := range items {
			fmt.Printf("%s\t%s\t%s\n", m.ID, m.UpdatedAt.Format("2006-01-02 15:04"), m.Title)
		}
	}
}

// importFile 同时接受单份简历与 {currentResumeId, resumes, metadata} 形式的集合导出。
func importFile(ctx context.Context, svc *store.Service, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("decode json: %w", err)
	}
	if _, ok := probe["resumes"]; !ok {
		var doc resume.Resume
		if err := json.Unmarshal(data, &doc); err != nil {
			return 0, fmt.Errorf("decode resume: %w", err)
		}
		if _, err := svc.Import(ctx, doc); err != nil {
			return 0, err
		}
		return 1, nil
	}

	var col resume.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return 0, fmt.Errorf("decode collection: %w", err)
	}
	ids := make([]string, 0, len(col.Resumes))
	for id := range col.Resumes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		doc := col.Resumes[id]
		if doc.ID == "" {
			doc.ID = id
		}
		if doc.Title == "" {
			doc.Title = col.Metadata[id].Title
		}
		if _, err := svc.Import(ctx, doc); err != nil {
			return 0, fmt.Errorf("resume %s: %w", id, err)
		}
	}
	if col.CurrentResumeID != "" {
		if err := svc.SetCurrent(ctx, col.CurrentResumeID); err != nil {
			return 0, fmt.Errorf("set current resume: %w", err)
		}
	}
	return len(ids), nil
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	env := func(value string, keys ...string) string {
		for _, k := range keys {
			if strings.TrimSpace(value) != "" {
				break
			}
			value = os.Getenv(k)
		}
		return strings.TrimSpace(value)
	}

	host = env(host, "DATABASE_HOST")
	name = env(name, "POSTGRES_DB", "DB_NAME")
	user = env(user, "POSTGRES_USER", "DB_USER")
	password = env(password, "POSTGRES_PASSWORD", "DB_PASSWORD")
	sslmode = env(sslmode, "DATABASE_SSLMODE")
	if port <= 0 {
		if raw := env("", "DATABASE_PORT"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}

	if host == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if sslmode == "" {
		sslmode = "disable"
	}
	if name == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if user == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if password == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}
