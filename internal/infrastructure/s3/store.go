// Package s3 almacén alternativo de imágenes QR sobre un bucket S3 (AWS o MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// Config parámetros del bucket.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // opcional; MinIO u otro compatible
	PathStyle       bool
	Folder          string // prefijo de las claves (QR)
	AccessKeyID     string // opcional; si no, cadena de credenciales por defecto
	SecretAccessKey string
}

// Store guarda los QR como objetos "<Folder>/<nombre>"; un Put sobrescribe.
type Store struct {
	client  *s3.Client
	bucket  string
	folder  string
	metrics *metrics.Recorder
	log     *logger.Logger
}

// New crea el almacén a partir de Config.
func New(ctx context.Context, cfg Config, rec *metrics.Recorder, log *logger.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket S3 requerido", domain.ErrServiceMisconfigured)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: cargar configuración: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// compatibles (MinIO) no siempre aceptan checksums por defecto
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})
	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		folder:  strings.Trim(cfg.Folder, "/"),
		metrics: rec,
		log:     logger.OrNop(log).Component("s3"),
	}, nil
}

// Key clave del objeto para un nombre de archivo.
func (s *Store) Key(name string) string {
	if s.folder == "" {
		return name
	}
	return path.Join(s.folder, name)
}

// Put sube (o sobrescribe) el objeto y devuelve su clave.
func (s *Store) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := s.Key(name)
	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	s.metrics.Observe("s3", "put", start, err)
	if err != nil {
		s.log.Error().Str("operation", "put").Str("identifier", key).Err(err).Msg("no se pudo subir el QR")
		return "", fmt.Errorf("%w: s3 put %s: %v", domain.ErrDataUnavailable, key, err)
	}
	s.log.Info().Str("operation", "put").Str("identifier", key).Msg("QR subido a S3")
	return key, nil
}

// Exists consulta el objeto con HeadObject.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	key := s.Key(name)
	start := time.Now()
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	var nf *types.NotFound
	if errors.As(err, &nf) {
		s.metrics.Observe("s3", "head", start, nil)
		return false, nil
	}
	s.metrics.Observe("s3", "head", start, err)
	if err != nil {
		return false, fmt.Errorf("%w: s3 head %s: %v", domain.ErrDataUnavailable, key, err)
	}
	return true, nil
}
