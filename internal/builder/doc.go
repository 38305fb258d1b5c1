/*
Package builder is responsible for turning chain definitions into runnable
executors. It acts as the bridge between the static configuration model
(defined in the 'config' package) and the sequential executor (the 'chain'
package).

Building a chain is a two-phase process:

 1. Binding: for every step, the runner is looked up in the registry, a fresh
    input struct is created from its NewInput function and the step's
    arguments are decoded into it.

 2. Assembly: the runner's builder turns the decoded input into a step action,
    which is registered on the executor in declaration order.

Every error is reported with the chain and step it belongs to, and nothing is
returned unless the whole chain could be built.
*/
package builder
