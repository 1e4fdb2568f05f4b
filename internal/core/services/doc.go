// Package services contains the core application logic, implementing
// the driving port interfaces using driven port dependencies.
//
// Services in this package:
//
//   - Retriever: embeds a question and ranks indexed chunks
//   - Assembler: builds a budget-bounded prompt with citations
//   - PipelineService: sequences ingestion and the question flow
//   - DocumentService: inspects and removes indexed documents
//
// Services depend only on port interfaces, never on concrete adapters.
// Calls to external gateways go through a bounded retry that only
// repeats transient failures.
package services
