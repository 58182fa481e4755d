package etl

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cnpj-data-api/config"
	"cnpj-data-api/internal/imports"
	"cnpj-data-api/internal/logs"
)

// FileType classifies one extracted CSV by the business entity it carries.
type FileType string

const (
	FileTypeCompany       FileType = "empresas"
	FileTypeEstablishment FileType = "estabelecimentos"
	FileTypePartner       FileType = "socios"
	FileTypeActivity      FileType = "cnaes"
	FileTypeReason        FileType = "motivos"
	FileTypeMunicipality  FileType = "municipios"
	FileTypeLegalNature   FileType = "naturezas"
	FileTypeCountry       FileType = "paises"
	FileTypeQualification FileType = "qualificacoes"
	FileTypeTaxRegime     FileType = "simples"
)

// Identity entities load first; reference tables follow. No runtime ordering
// dependency exists between them since FK checks are deferred to load time.
var processingOrder = []FileType{
	FileTypeCompany,
	FileTypeEstablishment,
	FileTypePartner,
	FileTypeActivity,
	FileTypeReason,
	FileTypeMunicipality,
	FileTypeLegalNature,
	FileTypeCountry,
	FileTypeQualification,
	FileTypeTaxRegime,
}

// A bundle missing any of these loads as PARTIAL: the core entities are in
// but enrichment lookups will be incomplete.
var requiredReferenceTypes = []FileType{
	FileTypeActivity,
	FileTypeReason,
	FileTypeMunicipality,
	FileTypeLegalNature,
	FileTypeCountry,
	FileTypeQualification,
	FileTypeTaxRegime,
}

// Data-shape error kinds, distinguishable from infrastructure failures with
// errors.Is.
var (
	ErrNoFilesFound    = errors.New("no classifiable files in archive")
	ErrNoRowsProcessed = errors.New("no rows processed from archive")
)

// Orchestrator discovers zip bundles, classifies their contents, drives the
// entity processors and records import status.
type Orchestrator struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Logs       *logs.LogService
	Processors map[FileType]Processor
}

func NewOrchestrator(db *gorm.DB, cfg *config.Config, logService *logs.LogService) *Orchestrator {
	loader := &Loader{DB: db}
	chunk := cfg.BatchSize

	reference := func(staging, target string) Processor {
		return &ReferenceProcessor{Loader: loader, ChunkSize: chunk, StagingTable: staging, TargetTable: target}
	}

	return &Orchestrator{
		DB:   db,
		Cfg:  cfg,
		Logs: logService,
		Processors: map[FileType]Processor{
			FileTypeCompany:       &CompanyProcessor{Loader: loader, ChunkSize: chunk},
			FileTypeEstablishment: &EstablishmentProcessor{Loader: loader, ChunkSize: chunk},
			FileTypePartner:       &PartnerProcessor{Loader: loader, ChunkSize: chunk},
			FileTypeTaxRegime:     &SimplesProcessor{Loader: loader, ChunkSize: chunk},
			FileTypeActivity:      reference("stg_cnaes", "cnaes"),
			FileTypeReason:        reference("stg_motivos", "motivos"),
			FileTypeMunicipality:  reference("stg_municipios", "municipios"),
			FileTypeLegalNature:   reference("stg_naturezas", "naturezas"),
			FileTypeCountry:       reference("stg_paises", "paises"),
			FileTypeQualification: reference("stg_qualificacoes", "qualificacoes"),
		},
	}
}

// classifyName matches the filename against the fixed marker set. First
// match wins; the order below is load-bearing and mirrors the feed's naming.
func classifyName(name string) (FileType, bool) {
	upper := strings.ToUpper(filepath.Base(name))
	switch {
	case strings.Contains(upper, "EMPRE"):
		return FileTypeCompany, true
	case strings.Contains(upper, "ESTABELE"):
		return FileTypeEstablishment, true
	case strings.Contains(upper, "SOCIO"):
		return FileTypePartner, true
	case strings.Contains(upper, "CNAE"):
		return FileTypeActivity, true
	case strings.Contains(upper, "MOTI"):
		return FileTypeReason, true
	case strings.Contains(upper, "MUNIC"):
		return FileTypeMunicipality, true
	case strings.Contains(upper, "NATJU"):
		return FileTypeLegalNature, true
	case strings.Contains(upper, "PAIS"):
		return FileTypeCountry, true
	case strings.Contains(upper, "QUALS"):
		return FileTypeQualification, true
	case strings.Contains(upper, "SIMPLES"):
		return FileTypeTaxRegime, true
	}
	return "", false
}

// Run processes every archive in the inbound directory in lexicographic
// order. One archive's failure never stops the batch; the returned total
// covers successfully processed archives only.
func (o *Orchestrator) Run(force bool) (int, error) {
	if err := o.ensureDirectories(); err != nil {
		return 0, err
	}
	o.failStaleImports()

	matches, err := filepath.Glob(filepath.Join(o.Cfg.RawDataPath, "*.zip"))
	if err != nil {
		return 0, err
	}
	sort.Strings(matches)

	total := 0
	for _, zipPath := range matches {
		n, err := o.ProcessArchive(zipPath, force)
		if err != nil {
			log.Printf("etl: error processing %s, continuing with remaining archives: %v", filepath.Base(zipPath), err)
			continue
		}
		total += n
	}
	return total, nil
}

// ProcessArchive runs the full state machine for one zip bundle:
// PROCESSING then exactly one of SUCCESS, PARTIAL or FAILED. The archive is
// filed away into the processed directory regardless of outcome.
func (o *Orchestrator) ProcessArchive(zipPath string, force bool) (int, error) {
	fileHash, err := HashFile(zipPath, o.Cfg.HashAlgorithm)
	if err != nil {
		return 0, err
	}
	name := filepath.Base(zipPath)

	if !force {
		done, err := o.alreadyProcessed(fileHash)
		if err != nil {
			return 0, err
		}
		if done {
			log.Printf("etl: skipping %s, hash already imported", name)
			o.audit("INFO", "archive_skipped", "hash already imported", name, map[string]string{"hash": fileHash})
			if err := o.moveToProcessed(zipPath); err != nil {
				return 0, err
			}
			return 0, nil
		}
	}

	rec := imports.ImportRecord{
		Filename: name,
		FileHash: fileHash,
		Status:   imports.StatusProcessing,
	}
	if err := o.DB.Create(&rec).Error; err != nil {
		return 0, err
	}

	total, runErr := o.runArchive(zipPath, &rec)
	if runErr != nil {
		// Best-effort FAILED mark; the original error still propagates.
		if err := o.updateRecord(&rec, imports.StatusFailed, 0, nil, nil); err != nil {
			log.Printf("etl: failed to mark import %d FAILED: %v", rec.ID, err)
		}
		o.audit("ERROR", "archive_failed", runErr.Error(), name, map[string]string{"hash": fileHash})
		if err := o.moveToProcessed(zipPath); err != nil {
			log.Printf("etl: failed to move %s to processed: %v", name, err)
		}
		return 0, runErr
	}

	o.audit("INFO", "archive_processed", fmt.Sprintf("%d rows loaded", total), name, map[string]string{"hash": fileHash, "status": rec.Status})
	if err := o.moveToProcessed(zipPath); err != nil {
		return total, err
	}
	return total, nil
}

// runArchive performs extraction and processing and writes the SUCCESS or
// PARTIAL terminal state. On error no terminal state has been written; the
// caller marks FAILED.
func (o *Orchestrator) runArchive(zipPath string, rec *imports.ImportRecord) (int, error) {
	extracted, workDir, err := o.extractClassified(zipPath)
	if workDir != "" {
		defer os.RemoveAll(workDir)
	}
	if err != nil {
		return 0, err
	}

	found := 0
	for _, paths := range extracted {
		found += len(paths)
	}
	if found == 0 {
		// Likely a bundle format change upstream.
		return 0, fmt.Errorf("%w: %s", ErrNoFilesFound, filepath.Base(zipPath))
	}

	total := 0
	typeCounts := make(map[string]int)
	for _, fileType := range processingOrder {
		processor := o.Processors[fileType]
		for _, path := range extracted[fileType] {
			n, err := processor.Process(path)
			if err != nil {
				return 0, fmt.Errorf("processing %s: %w", filepath.Base(path), err)
			}
			total += n
			typeCounts[string(fileType)] += n
		}
	}

	if total <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoRowsProcessed, filepath.Base(zipPath))
	}

	var missing []string
	for _, fileType := range requiredReferenceTypes {
		if len(extracted[fileType]) == 0 {
			missing = append(missing, string(fileType))
		}
	}

	status := imports.StatusSuccess
	if len(missing) > 0 {
		status = imports.StatusPartial
		log.Printf("etl: %s missing reference types %v, marking PARTIAL", filepath.Base(zipPath), missing)
	}
	if err := o.updateRecord(rec, status, total, typeCounts, missing); err != nil {
		return 0, err
	}
	return total, nil
}

// extractClassified unpacks the archive into a per-archive working directory
// and buckets entries by file type. Nested zips are extracted one level deep;
// the nested temporary copy is removed as soon as its entries are out.
func (o *Orchestrator) extractClassified(zipPath string) (map[FileType][]string, string, error) {
	stem := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	workDir := filepath.Join(o.Cfg.StagingPath, stem)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, "", err
	}

	extracted := make(map[FileType][]string)

	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, workDir, err
	}
	defer archive.Close()

	for _, member := range archive.File {
		if member.FileInfo().IsDir() {
			continue
		}

		memberName := filepath.Base(member.Name)
		if strings.HasSuffix(strings.ToUpper(memberName), ".ZIP") {
			if err := o.extractNested(member, workDir, extracted); err != nil {
				return nil, workDir, err
			}
			continue
		}

		fileType, ok := classifyName(memberName)
		if !ok {
			continue
		}
		target := filepath.Join(workDir, memberName)
		if err := extractZipEntry(member, target); err != nil {
			return nil, workDir, err
		}
		extracted[fileType] = append(extracted[fileType], target)
	}

	return extracted, workDir, nil
}

// extractNested copies an inner zip to a temporary file, classifies its
// entries and extracts the matches. Only one level of nesting is followed.
func (o *Orchestrator) extractNested(member *zip.File, workDir string, extracted map[FileType][]string) error {
	innerStem := strings.TrimSuffix(filepath.Base(member.Name), filepath.Ext(member.Name))
	nestedPath := filepath.Join(workDir, innerStem+".zip")
	if err := extractZipEntry(member, nestedPath); err != nil {
		return err
	}
	defer os.Remove(nestedPath)

	nested, err := zip.OpenReader(nestedPath)
	if err != nil {
		return err
	}
	defer nested.Close()

	for _, inner := range nested.File {
		if inner.FileInfo().IsDir() {
			continue
		}
		fileType, ok := classifyName(inner.Name)
		if !ok {
			continue
		}
		target := filepath.Join(workDir, innerStem, filepath.Base(inner.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractZipEntry(inner, target); err != nil {
			return err
		}
		extracted[fileType] = append(extracted[fileType], target)
	}
	return nil
}

func extractZipEntry(member *zip.File, target string) error {
	src, err := member.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (o *Orchestrator) alreadyProcessed(fileHash string) (bool, error) {
	var count int64
	err := o.DB.Model(&imports.ImportRecord{}).
		Where("hash_arquivo = ? AND status = ?", fileHash, imports.StatusSuccess).
		Where("COALESCE(registros_processados, 0) > 0 OR COALESCE(registros_inseridos, 0) > 0").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (o *Orchestrator) updateRecord(rec *imports.ImportRecord, status string, processed int, typeCounts map[string]int, missing []string) error {
	rec.Status = status
	rec.RecordsProcessed = processed
	rec.RecordsInserted = processed
	if typeCounts != nil {
		if b, err := json.Marshal(typeCounts); err == nil {
			rec.TypeCounts = datatypes.JSON(b)
		}
	}
	rec.MissingTypes = missing
	return o.DB.Save(rec).Error
}

// failStaleImports closes out PROCESSING records abandoned by a killed run.
// Their archives already sit in the processed directory, so re-running them
// takes an explicit force.
func (o *Orchestrator) failStaleImports() {
	cutoff := time.Now().Add(-time.Duration(o.Cfg.StaleImportHours) * time.Hour)
	res := o.DB.Model(&imports.ImportRecord{}).
		Where("status = ? AND created_at < ?", imports.StatusProcessing, cutoff).
		Update("status", imports.StatusFailed)
	if res.Error != nil {
		log.Printf("etl: stale import sweep failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("etl: marked %d stale PROCESSING imports FAILED", res.RowsAffected)
	}
}

func (o *Orchestrator) ensureDirectories() error {
	for _, dir := range []string{o.Cfg.RawDataPath, o.Cfg.StagingPath, o.Cfg.ProcessedPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// moveToProcessed files the archive away so the next run does not pick it up
// again. A pre-existing file of the same name is overwritten. The directory
// is created here, not only in Run, so a direct ProcessArchive call files
// the archive too.
func (o *Orchestrator) moveToProcessed(zipPath string) error {
	if err := os.MkdirAll(o.Cfg.ProcessedPath, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(o.Cfg.ProcessedPath, filepath.Base(zipPath))
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Rename(zipPath, dest); err == nil {
		return nil
	}
	// Rename fails across filesystems; fall back to copy and delete.
	src, err := os.Open(zipPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(zipPath)
}

func (o *Orchestrator) audit(level, action, message, filename string, metadata any) {
	if o.Logs == nil {
		return
	}
	entry := logs.SystemLog{
		Level:    level,
		Service:  "etl",
		Action:   action,
		Message:  message,
		Filename: &filename,
	}
	if err := o.Logs.Log(entry, metadata); err != nil {
		log.Printf("etl: audit log write failed: %v", err)
	}
}
