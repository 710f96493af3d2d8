// Package pipeline wires the generation stages of spec §2 into one
// orchestrated run: Generate runs the Doc Loader, Annotation Interpreter,
// Type Resolver, Signature Synthesizer, Schema Emitter and Facade Emitter,
// and leaves the Writer stage (writer.Write) to the caller. It adds the
// ambient and domain stack around them: structured logging and tracing
// (spec §10.1, §11.4), the optional doc cache (§11.3), and the hermeticity
// ledger (§11.2).
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gigainfosystems/buffi/annotate"
	"github.com/gigainfosystems/buffi/cache"
	"github.com/gigainfosystems/buffi/codegen/ir"
	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/errtax"
	"github.com/gigainfosystems/buffi/facade"
	"github.com/gigainfosystems/buffi/registry/store"
	"github.com/gigainfosystems/buffi/schema"
	"github.com/gigainfosystems/buffi/sig"
	"github.com/gigainfosystems/buffi/telemetry"
	"github.com/gigainfosystems/buffi/typesys"
	"github.com/gigainfosystems/buffi/writer"
)

// Result is the outcome of one successful Generate call: the fully rendered
// file set (before the Writer's namespace substitution and filesystem
// commit), the run's IR summary, and its ledger digest.
type Result struct {
	Files       []*writer.File
	Design      *ir.Design
	InputDigest string
}

// Deps bundles the pipeline's optional collaborators. A zero-value Deps is
// valid: DocCache defaults to cache.NoopCache{} and Ledger is skipped when
// nil, matching spec §11.2/§11.3's "optimization only, never load-bearing"
// framing.
type Deps struct {
	DocCache cache.DocCache
	Ledger   store.Store
	Logger   *logrus.Logger
}

// Generate runs the full pipeline against rawDoc and cfg, returning the
// rendered (but not yet written) file set. It never touches the
// filesystem; call writer.Write on the result to commit it (spec §7: a
// fatal error must leave no partial output).
func Generate(ctx context.Context, rawDoc []byte, cfg *config.Config, deps Deps) (*Result, error) {
	docCache := deps.DocCache
	if docCache == nil {
		docCache = cache.NoopCache{}
	}

	run, ctx := telemetry.NewRun(ctx, deps.Logger)
	defer run.End()

	g, err := loadGraph(ctx, run, rawDoc, cfg, docCache)
	if err != nil {
		run.Logger.WithError(err).Error("doc load failed")
		return nil, err
	}

	ann, err := runAnnotate(ctx, run, g)
	if err != nil {
		run.Logger.WithError(err).Error("annotation interpretation failed")
		return nil, err
	}

	reg, fns, err := runResolve(ctx, run, g, ann, cfg)
	if err != nil {
		run.Logger.WithError(err).Error("type resolution failed")
		return nil, err
	}

	sigFns, err := runSynthesize(ctx, run, reg, fns)
	if err != nil {
		run.Logger.WithError(err).Error("signature synthesis failed")
		return nil, err
	}

	schemaFile, err := runSchemaEmit(ctx, run, reg, cfg)
	if err != nil {
		run.Logger.WithError(err).Error("schema emission failed")
		return nil, err
	}

	facadeFiles, err := runFacadeEmit(ctx, run, sigFns, cfg)
	if err != nil {
		run.Logger.WithError(err).Error("facade emission failed")
		return nil, err
	}

	files := append([]*writer.File{schemaFile}, facadeFiles...)

	design := ir.Build(reg, sigFns, cfg)

	digest := InputDigest(rawDoc, cfg)
	if err := recordLedger(ctx, run, deps.Ledger, digest, cfg, files); err != nil {
		// The ledger is an optimization (spec §11.2): a write failure is
		// logged but never fails the run.
		run.Logger.WithError(err).Warn("hermeticity ledger record failed")
	}

	return &Result{Files: files, Design: design, InputDigest: digest}, nil
}

// InputDigest hashes the raw doc bytes together with the JSON encoding of
// the whole config record, forming the hermeticity ledger's key (spec
// §11.2: "keyed by a hash of the input doc + config"). Every config field
// is covered, including ones that do not change emitted content, such as
// OutputDir and the cache and ledger addresses.
func InputDigest(rawDoc []byte, cfg *config.Config) string {
	h := sha256.New()
	h.Write(rawDoc)
	h.Write([]byte{0})
	enc, _ := json.Marshal(cfg)
	h.Write(enc)
	return hex.EncodeToString(h.Sum(nil))
}

func loadGraph(ctx context.Context, run *telemetry.Run, rawDoc []byte, cfg *config.Config, docCache cache.DocCache) (*docloader.Graph, error) {
	_, log, end := run.StartStage(ctx, "doc_loader")
	defer func() { end() }()

	if g, found, err := docCache.Get(ctx, rawDoc); err == nil && found {
		log.WithField("cache_hit", true).Info("doc loaded from cache")
		return g, nil
	} else if err != nil {
		log.WithError(err).Warn("doc cache lookup failed, falling back to a fresh load")
	}

	g, err := docloader.LoadBytes(rawDoc, cfg.DocSchemaMin, cfg.DocSchemaMax)
	if err != nil {
		return nil, err
	}
	log.WithField("item_count", len(g.Doc.Index)).Info("doc loaded")

	if err := docCache.Put(ctx, rawDoc, g); err != nil {
		log.WithError(err).Warn("doc cache populate failed")
	}
	return g, nil
}

func runAnnotate(ctx context.Context, run *telemetry.Run, g *docloader.Graph) (*annotate.Result, error) {
	_, log, end := run.StartStage(ctx, "annotation_interpreter")
	ann, err := annotate.Interpret(g)
	if err != nil {
		end()
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"free_functions": len(ann.FreeFunctions),
		"client_types":   len(ann.ClientTypes),
		"client_methods": len(ann.ClientMethods),
	}).Info("annotations interpreted")
	if len(ann.CustomSerde) > 0 {
		log.WithField("custom_serde_count", len(ann.CustomSerde)).
			Warn("custom_serde fields present, shape still needs manual verification")
	}
	end(attribute.Int("free_function_count", len(ann.FreeFunctions)),
		attribute.Int("client_method_count", len(ann.ClientMethods)))
	return ann, nil
}

func runResolve(ctx context.Context, run *telemetry.Run, g *docloader.Graph, ann *annotate.Result, cfg *config.Config) (*typesys.Registry, []*typesys.ResolvedFunction, error) {
	_, log, end := run.StartStage(ctx, "type_resolver")
	resolver := typesys.NewResolver(g, ann, cfg)
	reg, fns, err := resolver.Resolve()
	if err != nil {
		end()
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{
		"registered_types": len(reg.Names()),
		"functions":        len(fns),
	}).Info("types resolved")
	end(attribute.Int("registered_type_count", len(reg.Names())),
		attribute.Int("function_count", len(fns)))
	return reg, fns, nil
}

func runSynthesize(ctx context.Context, run *telemetry.Run, reg *typesys.Registry, fns []*typesys.ResolvedFunction) ([]*sig.Function, error) {
	_, log, end := run.StartStage(ctx, "signature_synthesizer")
	sigFns, err := sig.Synthesize(reg, fns)
	if err != nil {
		end()
		return nil, err
	}
	log.WithField("signature_count", len(sigFns)).Info("signatures synthesized")
	end(attribute.Int("signature_count", len(sigFns)))
	return sigFns, nil
}

func runSchemaEmit(ctx context.Context, run *telemetry.Run, reg *typesys.Registry, cfg *config.Config) (*writer.File, error) {
	_, log, end := run.StartStage(ctx, "schema_emitter")
	f, err := schema.Emit(reg, cfg)
	if err != nil {
		end()
		return nil, err
	}
	log.WithField("bytes", len(f.Content)).Info("type model emitted")
	end(attribute.Int("emitted_byte_count", len(f.Content)))
	return f, nil
}

func runFacadeEmit(ctx context.Context, run *telemetry.Run, fns []*sig.Function, cfg *config.Config) ([]*writer.File, error) {
	_, log, end := run.StartStage(ctx, "facade_emitter")
	files, err := facade.Emit(fns, cfg)
	if err != nil {
		end()
		return nil, err
	}
	var total int
	for _, f := range files {
		total += len(f.Content)
	}
	log.WithFields(logrus.Fields{"file_count": len(files), "bytes": total}).Info("facade emitted")
	end(attribute.Int("file_count", len(files)), attribute.Int("emitted_byte_count", total))
	return files, nil
}

func recordLedger(ctx context.Context, run *telemetry.Run, ledger store.Store, digest string, cfg *config.Config, files []*writer.File) error {
	if ledger == nil {
		return nil
	}
	_, log, end := run.StartStage(ctx, "writer")
	defer end()

	digests := make([]store.FileDigest, 0, len(files))
	for _, f := range files {
		sum := sha256.Sum256([]byte(f.Content))
		digests = append(digests, store.FileDigest{Path: f.Name, SHA256: hex.EncodeToString(sum[:])})
	}
	sort.Slice(digests, func(i, j int) bool { return digests[i].Path < digests[j].Path })

	r := &store.Run{
		InputDigest: digest,
		APIBasename: cfg.APIBasename,
		Files:       digests,
		RecordedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := ledger.SaveRun(ctx, r); err != nil {
		return fmt.Errorf("ledger: save run %s: %w", digest, err)
	}
	log.WithField("file_count", len(digests)).Info("hermeticity ledger updated")
	return nil
}

// VerifyHermeticity regenerates the file set for rawDoc/cfg in memory,
// hashes it the same way recordLedger does, and compares it against the
// last run recorded under the same input digest (spec §10.2's
// verify-hermeticity subcommand; Testable Property 1).
func VerifyHermeticity(ctx context.Context, rawDoc []byte, cfg *config.Config, ledger store.Store) (drift []string, err error) {
	result, err := Generate(ctx, rawDoc, cfg, Deps{Ledger: nil})
	if err != nil {
		return nil, err
	}

	digest := result.InputDigest
	recorded, err := ledger.GetRun(ctx, digest)
	if err == store.ErrNotFound {
		return nil, errtax.DocLoadError(nil, "no recorded run for input digest %s; run generate first", digest)
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get run %s: %w", digest, err)
	}

	want := make(map[string]string, len(recorded.Files))
	for _, fd := range recorded.Files {
		want[fd.Path] = fd.SHA256
	}
	got := make(map[string]string, len(result.Files))
	for _, f := range result.Files {
		sum := sha256.Sum256([]byte(f.Content))
		got[f.Name] = hex.EncodeToString(sum[:])
	}

	var names []string
	for name := range want {
		names = append(names, name)
	}
	for name := range got {
		if _, ok := want[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		w, wok := want[name]
		gotHash, gok := got[name]
		switch {
		case wok && !gok:
			drift = append(drift, fmt.Sprintf("%s: recorded but no longer emitted", name))
		case !wok && gok:
			drift = append(drift, fmt.Sprintf("%s: emitted but not recorded", name))
		case w != gotHash:
			drift = append(drift, fmt.Sprintf("%s: content hash changed (%s -> %s)", name, w, gotHash))
		}
	}
	return drift, nil
}
