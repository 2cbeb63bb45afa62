package services

import "context"

type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type FaceMerger interface {
	MergeFace(ctx context.Context, base, face []byte) ([]byte, error)
}

type Cartoonifier interface {
	Cartoonify(ctx context.Context, imageURL string) (string, error)
}

type CharacterGenerator interface {
	GenerateCharacter(ctx context.Context, imageURL, prompt string) (string, error)
}

type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, imageURL string) ([]byte, error)
}

type FaceDescriber interface {
	DescribeFace(ctx context.Context, imageURL, customPrompt string) (string, error)
	Translate(ctx context.Context, text string) (string, error)
}

type CharacterCatalog interface {
	RandomCharacterImage(ctx context.Context, characterID string) (string, error)
}

type ObjectStorage interface {
	Upload(bucket, path string, data []byte, contentType string) (string, error)
	Remove(bucket string, paths ...string) error
	Download(bucket, path string) ([]byte, error)
}

// Providers groups the external collaborators. A nil field means the
// provider's credentials are absent; features that need it report a ConfigError.
type Providers struct {
	Downloader Downloader
	Merger     FaceMerger
	Cartoons   Cartoonifier
	Generator  CharacterGenerator
	Remover    BackgroundRemover
	Describer  FaceDescriber
	Characters CharacterCatalog
	Storage    ObjectStorage
}

type requirement struct {
	ok   bool
	keys []string
}

func (p Providers) openai() requirement {
	return requirement{ok: p.Merger != nil, keys: []string{"OPENAI_ACCESS_KEY"}}
}

func (p Providers) replicate() requirement {
	return requirement{ok: p.Cartoons != nil && p.Generator != nil, keys: []string{"REPLICATE_API_TOKEN"}}
}

func (p Providers) rapidapi() requirement {
	return requirement{ok: p.Remover != nil, keys: []string{"RAPIDAPI_KEY"}}
}

func (p Providers) gemini() requirement {
	return requirement{ok: p.Describer != nil, keys: []string{"GEMINI_API_KEY"}}
}

func (p Providers) storage() requirement {
	return requirement{ok: p.Storage != nil, keys: []string{"SUPABASE_URL", "SUPABASE_ANON_KEY"}}
}

func (p Providers) characters() requirement {
	return requirement{ok: p.Characters != nil, keys: []string{"SUPABASE_URL", "SUPABASE_ANON_KEY"}}
}

func checkConfigured(feature string, reqs ...requirement) error {
	var missing []string
	seen := map[string]bool{}
	for _, r := range reqs {
		if r.ok {
			continue
		}
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				missing = append(missing, k)
			}
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Feature: feature, Missing: missing}
	}
	return nil
}
