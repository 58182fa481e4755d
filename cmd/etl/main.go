package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"cnpj-data-api/config"
	"cnpj-data-api/internal/etl"
	"cnpj-data-api/internal/imports"
	"cnpj-data-api/internal/logs"
	"cnpj-data-api/internal/registry"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&registry.Empresa{},
		&registry.Estabelecimento{},
		&registry.Socio{},
		&registry.Simples{},
		&registry.Cnae{},
		&registry.Motivo{},
		&registry.Municipio{},
		&registry.Natureza{},
		&registry.Pais{},
		&registry.Qualificacao{},
		&imports.ImportRecord{},
		&logs.SystemLog{},
	); err != nil {
		return err
	}
	// Partner rows have no single-column key; upserts match on a NULL-safe
	// composite, so the unique index must be built on the same expressions.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_socios_chave ON socios ` +
		`("cnpj_basico", COALESCE("nome_socio", ''), COALESCE("cpf_cnpj_socio", ''))`).Error
}

func main() {
	force := flag.Bool("force", false, "reprocess archives even when their hash was already imported")
	skipFetch := flag.Bool("skip-fetch", false, "do not download archives from the configured bucket")
	flag.Parse()

	cfg := config.LoadConfig()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrate(db); err != nil {
		log.Fatal("Failed to run schema migration:", err)
	}

	logService := &logs.LogService{DB: db}

	if cfg.GCSBucket != "" && !*skipFetch {
		n, err := etl.FetchArchives(context.Background(), cfg.GCSBucket, cfg.GCSPrefix, cfg.RawDataPath, cfg.ProcessedPath)
		if err != nil {
			log.Fatal("Failed to fetch archives:", err)
		}
		log.Printf("Downloaded %d archive(s) from gs://%s/%s", n, cfg.GCSBucket, cfg.GCSPrefix)
	}

	orch := etl.NewOrchestrator(db, &cfg, logService)
	total, err := orch.Run(*force)
	if err != nil {
		log.Fatal("Import run failed:", err)
	}

	log.Printf("Import run finished, %d record(s) processed", total)
	fmt.Println(total)
}
