package pkg

// App is the interface that must be implemented by all applications.
type App interface {
	Bam() // Bam starts the application.
}
