// Package oci packages rendered bundles as OCI artifacts and pushes
// them to container registries. Packaging and pushing are split so a
// bundle can be packaged offline and pushed later from its local
// store.
package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	ocistore "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
)

const (
	// ArtifactType marks helmwire bundle artifacts in registries.
	ArtifactType = "application/vnd.helmwire.bundle.v1"

	// BundleFileMediaType is the layer media type for bundle files.
	BundleFileMediaType = "application/vnd.helmwire.bundle.file.v1"

	// storeDirName is the OCI layout directory Package writes under
	// the output directory.
	storeDirName = "oci"
)

// PackageOptions configures local artifact packaging.
type PackageOptions struct {
	// SourceDir is the rendered bundle to package.
	SourceDir string

	// OutputDir receives the local OCI layout store.
	OutputDir string

	Registry   string
	Repository string
	Tag        string
}

// PackageResult reports a locally packaged artifact.
type PackageResult struct {
	Reference string
	Digest    string
	StorePath string
}

// PushOptions configures the push to a remote registry.
type PushOptions struct {
	Registry   string
	Repository string
	Tag        string

	// PlainHTTP talks to the registry without TLS.
	PlainHTTP bool

	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult reports a pushed artifact.
type PushResult struct {
	Reference string
	Digest    string
}

// ValidateRegistryReference checks that registry plus repository parse
// as a valid reference before any network work happens.
func ValidateRegistryReference(registryHost, repository string) error {
	if registryHost == "" {
		return hwerrors.New(hwerrors.ErrCodeInvalidRequest, "oci: registry is required")
	}
	if repository == "" {
		return hwerrors.New(hwerrors.ErrCodeInvalidRequest, "oci: repository is required")
	}

	ref, err := registry.ParseReference(registryHost + "/" + repository)
	if err != nil {
		return hwerrors.Wrap(hwerrors.ErrCodeInvalidRequest,
			fmt.Sprintf("oci: invalid reference %s/%s", registryHost, repository), err)
	}
	if ref.Registry != registryHost {
		// ParseReference folded part of the host into the repository,
		// which means the host alone is not a valid registry.
		return hwerrors.Newf(hwerrors.ErrCodeInvalidRequest,
			"oci: %q is not a valid registry host", registryHost)
	}
	return nil
}

// Package stores the bundle under SourceDir as a tagged artifact in a
// local OCI layout below OutputDir.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	tag := opts.Tag
	if tag == "" {
		tag = "latest"
	}
	reference := fmt.Sprintf("%s/%s:%s", opts.Registry, opts.Repository, tag)
	if _, err := registry.ParseReference(reference); err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInvalidRequest,
			fmt.Sprintf("oci: invalid reference %s", reference), err)
	}

	storePath := filepath.Join(opts.OutputDir, storeDirName)

	src, err := file.New(opts.SourceDir)
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInternal, "oci: failed to open bundle directory", err)
	}
	defer src.Close()

	layers, err := addBundleFiles(ctx, src, opts.SourceDir, storePath)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidRequest,
			"oci: bundle directory %s has no files to package", opts.SourceDir)
	}

	manifest, err := oras.PackManifest(ctx, src, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers: layers,
			ManifestAnnotations: map[string]string{
				ocispec.AnnotationTitle:   filepath.Base(opts.SourceDir),
				ocispec.AnnotationVersion: tag,
			},
		})
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInternal, "oci: failed to pack manifest", err)
	}

	if err := src.Tag(ctx, manifest, tag); err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInternal, "oci: failed to tag manifest", err)
	}

	dst, err := ocistore.New(storePath)
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInternal, "oci: failed to create local store", err)
	}
	if _, err := oras.Copy(ctx, src, tag, dst, tag, oras.DefaultCopyOptions); err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInternal, "oci: failed to copy artifact into local store", err)
	}

	return &PackageResult{
		Reference: reference,
		Digest:    manifest.Digest.String(),
		StorePath: storePath,
	}, nil
}

// addBundleFiles adds every regular file below sourceDir as a layer,
// skipping the local store subtree when it nests inside the bundle.
func addBundleFiles(ctx context.Context, src *file.Store, sourceDir, storePath string) ([]ocispec.Descriptor, error) {
	var layers []ocispec.Descriptor

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == storePath {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		desc, err := src.Add(ctx, filepath.ToSlash(rel), BundleFileMediaType, "")
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", rel, err)
		}
		layers = append(layers, desc)
		return nil
	})
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInternal, "oci: failed to add bundle files", err)
	}
	return layers, nil
}

// PushFromStore pushes a previously packaged artifact from its local
// OCI layout store to the remote registry.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}

	tag := opts.Tag
	if tag == "" {
		tag = "latest"
	}
	reference := fmt.Sprintf("%s/%s:%s", opts.Registry, opts.Repository, tag)

	src, err := ocistore.New(storePath)
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInternal, "oci: failed to open local store", err)
	}

	repo, err := remote.NewRepository(strings.TrimSuffix(reference, ":"+tag))
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInvalidRequest,
			fmt.Sprintf("oci: invalid repository %s/%s", opts.Registry, opts.Repository), err)
	}
	repo.PlainHTTP = opts.PlainHTTP

	client := &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
	}
	if credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{}); err == nil {
		client.Credential = credentials.Credential(credStore)
	}
	if opts.InsecureTLS {
		client.Client = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	repo.Client = client

	desc, err := oras.Copy(ctx, src, tag, repo, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeUnavailable,
			fmt.Sprintf("oci: failed to push %s", reference), err)
	}

	return &PushResult{
		Reference: reference,
		Digest:    desc.Digest.String(),
	}, nil
}
