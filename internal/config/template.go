package config

// DefaultYAML is the commented configuration template written by
// `hostprint init`. It mirrors DefaultConfig; keep the two in sync.
func DefaultYAML() string {
	return `# hostprint configuration
#
# Missing keys fall back to built-in defaults, so this file only needs
# the sections you want to change.

assembly:
  # Bounded worker pool size for collector execution.
  parallel: 4
  # Per-collector timeout. A collector that exceeds it is killed and
  # recorded as a failure; the rest of the snapshot still completes.
  timeout: 30s
  # Collectors to skip entirely.
  disabled: []

hashing:
  # Replace privacy-sensitive leaf values with SHA3-256 digests before the
  # snapshot is stored or compared. Hashing is deterministic, so change
  # detection still works on hashed values.
  enabled: true
  rules:
    - collector: network_config
      fields: [ip_addresses, arp_cache, routes, wifi_networks]
    - collector: ssh_config
      fields: [known_hosts]
    - collector: hosts_file
      fields: [entries]

severity:
  # Collectors whose changes are always critical.
  critical: [security_settings, ssh_config]
  # Collectors whose changes are high severity.
  high: [kernel_modules, system_services, user_accounts, network_config, scheduled_tasks]
  # Per-path overrides; the longest matching path prefix wins.
  # overrides:
  #   - collector: network_config
  #     path: dns_servers
  #     severity: critical
  overrides: []
  # Severity for removals in unclassified collectors.
  removed: medium
  # Severity for everything else.
  default: low

# Default output directory for snapshot artifacts.
# storage:
#   dir: ~/.hostprint/snapshots

# Snapshot catalog database. Catalog failures never block snapshotting.
# history:
#   path: ~/.hostprint/history.db
`
}
