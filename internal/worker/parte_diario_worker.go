package worker

// parte_diario_worker.go
// Processes receipt jobs from QueueParteDiario: renders the activity's parte
// diario PDF and, when the registering user has an email on file, enqueues an
// email job with the PDF attached.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"partediario/internal/infra"
	"partediario/internal/model"
	"partediario/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ParteDiarioPayload is the job envelope sent to QueueParteDiario.
type ParteDiarioPayload struct {
	ActividadID string `json:"actividad_id"`
}

type ParteDiarioWorker struct {
	actividadRepo  repository.ActividadRepository
	usuarioRepo    repository.UsuarioRepository
	loteRepo       repository.LoteRepository
	categoriaRepo  repository.CategoriaRepository
	insumoRepo     repository.InsumoRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewParteDiarioWorker(
	actividadRepo repository.ActividadRepository,
	usuarioRepo repository.UsuarioRepository,
	loteRepo repository.LoteRepository,
	categoriaRepo repository.CategoriaRepository,
	insumoRepo repository.InsumoRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
) *ParteDiarioWorker {
	return &ParteDiarioWorker{
		actividadRepo:  actividadRepo,
		usuarioRepo:    usuarioRepo,
		loteRepo:       loteRepo,
		categoriaRepo:  categoriaRepo,
		insumoRepo:     insumoRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single parte diario job:
//  1. Parse ParteDiarioPayload from the job envelope
//  2. Fetch the activity with its detail lines
//  3. Resolve lote and categoría display names
//  4. Render the PDF (fpdf), with retries
//  5. Enqueue an email job when the registering user has an address
func (w *ParteDiarioWorker) Process(ctx context.Context, job Job) {
	var payload ParteDiarioPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("parte_diario_worker: invalid payload")
		return
	}
	actividadID, err := uuid.Parse(payload.ActividadID)
	if err != nil {
		log.Error().Str("actividad_id", payload.ActividadID).Msg("parte_diario_worker: invalid actividad_id")
		return
	}

	a, err := w.actividadRepo.FindByID(ctx, actividadID)
	if err != nil {
		log.Error().Err(err).Str("actividad_id", payload.ActividadID).Msg("parte_diario_worker: actividad not found")
		return
	}

	nombres, err := w.resolverNombres(ctx, a.EstablecimientoID, a)
	if err != nil {
		log.Error().Err(err).Str("actividad_id", payload.ActividadID).Msg("parte_diario_worker: failed to resolve names")
		return
	}

	var pdfPath string
	pdfErr := withRetry(ctx, 3, func(attempt int) error {
		path, err := infra.GenerateParteDiarioPDF(a, nombres, w.pdfStoragePath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).
				Str("actividad_id", payload.ActividadID).
				Msg("parte_diario_worker: PDF attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if pdfErr != nil {
		log.Error().Err(pdfErr).Str("actividad_id", payload.ActividadID).Msg("parte_diario_worker: PDF generation failed after retries")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("actividad_id", payload.ActividadID).Msg("parte_diario_worker: PDF generated")

	usuario, err := w.usuarioRepo.FindByID(ctx, a.UsuarioID)
	if err != nil || usuario.Email == nil || *usuario.Email == "" {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: *usuario.Email,
		Subject: fmt.Sprintf("Parte diario %s — %s", a.Fecha.Format("02/01/2006"), a.Tipo),
		Body:    "Adjunto encontrarás el parte diario de la actividad registrada.",
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", *usuario.Email).Msg("parte_diario_worker: failed to enqueue email")
	}
}

// resolverNombres batches the lote and categoría lookups the PDF needs for
// display names.
func (w *ParteDiarioWorker) resolverNombres(ctx context.Context, est uuid.UUID, a *model.Actividad) (infra.ParteNombres, error) {
	var loteIDs, catIDs []uuid.UUID
	if a.LoteID != nil {
		loteIDs = append(loteIDs, *a.LoteID)
	}
	for _, d := range a.DetallesAnimales {
		loteIDs = append(loteIDs, d.LoteID)
		if d.LoteOrigenID != nil {
			loteIDs = append(loteIDs, *d.LoteOrigenID)
		}
		if d.LoteDestinoID != nil {
			loteIDs = append(loteIDs, *d.LoteDestinoID)
		}
		catIDs = append(catIDs, d.CategoriaAnimalID)
		if d.CategoriaAnimalAnteriorID != nil {
			catIDs = append(catIDs, *d.CategoriaAnimalAnteriorID)
		}
	}

	var insumoIDs []uuid.UUID
	for _, d := range a.DetallesInsumos {
		insumoIDs = append(insumoIDs, d.InsumoID)
	}

	nombres := infra.ParteNombres{
		Lotes:      make(map[uuid.UUID]string),
		Categorias: make(map[uuid.UUID]string),
		Insumos:    make(map[uuid.UUID]string),
	}
	lotes, err := w.loteRepo.FindByIDs(ctx, est, loteIDs)
	if err != nil {
		return nombres, err
	}
	for id, l := range lotes {
		nombres.Lotes[id] = l.Nombre
	}
	cats, err := w.categoriaRepo.FindByIDs(ctx, est, catIDs)
	if err != nil {
		return nombres, err
	}
	for id, c := range cats {
		nombres.Categorias[id] = c.Nombre
	}
	insumos, err := w.insumoRepo.FindByIDs(ctx, est, insumoIDs)
	if err != nil {
		return nombres, err
	}
	for id, ins := range insumos {
		nombres.Insumos[id] = ins.Nombre
	}
	return nombres, nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
