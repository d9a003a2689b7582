/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package owns a single configuration singleton stored under the
"_c:<package>" key. Configuration is loaded from the "conf" section of the
genesis file, validated and saved once. Handlers read it back with Load.
*/
package gconf
