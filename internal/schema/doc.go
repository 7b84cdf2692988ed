// Package schema turns the workspace's JSON Schema files into per-language
// type artifacts and mounts them into consuming services via symlinks.
//
// Compilation is delegated to plugin.SchemaCompiler implementations; the
// built-in ones shell out to quicktype through pnpm. Generated code lands
// under the configured output path, one subdirectory per target language,
// and each service that declares a mount directory gets a symlink from
// {service}/{mount_dir} to the directory for its language. Mounting is
// idempotent and never replaces a genuine directory.
package schema
