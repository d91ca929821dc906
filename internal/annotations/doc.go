// Package annotations finds secret annotations in Elixir configuration files.
//
// An annotation is a comment of the form
//
//	# confvault.dev/config-secrets-location: vault:secret/<path>#<name>
//
// placed directly above one of three import statements:
//
//	import_config "name"
//	if File.exists?("name") do import_config("name") end
//	File.exists?("name") && import_config("name")
//
// The imported file becomes the destination of the secret. Annotations
// whose payload or surrounding statement does not fit are skipped.
package annotations
