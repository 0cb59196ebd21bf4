package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
)

// Reducer recorta una nota de contrato a sus primeras y ultimas paginas para
// que entre en los limites de tokens del proveedor. Las paginas del medio de
// una nota larga son lineas de transacciones repetidas; cabecera y
// obligaciones viven al principio y al final. No interpreta el contenido.
type Reducer struct {
	keepFirst int
	keepLast  int
	logger    *zap.Logger
}

// NewReducer construye un Reducer; valores no positivos caen al default 2/2.
func NewReducer(keepFirst, keepLast int, logger *zap.Logger) *Reducer {
	if keepFirst <= 0 {
		keepFirst = 2
	}
	if keepLast <= 0 {
		keepLast = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reducer{keepFirst: keepFirst, keepLast: keepLast, logger: logger}
}

// Reduce escribe el PDF recortado en outDir y devuelve su ruta junto con el
// total de paginas del original. Si el documento ya tiene pocas paginas
// devuelve la ruta original sin escribir nada; el caller distingue ese caso
// comparando rutas.
func (r *Reducer) Reduce(inPath, outDir string) (string, int, error) {
	pageCount, err := api.PageCountFile(inPath)
	if err != nil {
		return "", 0, fmt.Errorf("count pages: %w", err)
	}

	if pageCount <= r.keepFirst+r.keepLast {
		r.logger.Info("pdf small enough, keeping all pages", zap.Int("pages", pageCount))
		return inPath, pageCount, nil
	}

	selection := pageSelection(pageCount, r.keepFirst, r.keepLast)
	outPath := filepath.Join(outDir, uuid.NewString()+"_reduced.pdf")

	if err := api.TrimFile(inPath, outPath, selection, nil); err != nil {
		os.Remove(outPath)
		return "", 0, fmt.Errorf("trim pages: %w", err)
	}

	r.logger.Info("pdf reduced",
		zap.Int("pages", pageCount),
		zap.Strings("selection", selection),
		zap.String("out_path", outPath),
	)
	return outPath, pageCount, nil
}

// pageSelection arma la seleccion de paginas en la sintaxis de pdfcpu.
func pageSelection(total, first, last int) []string {
	return []string{
		fmt.Sprintf("1-%d", first),
		fmt.Sprintf("%d-%d", total-last+1, total),
	}
}
